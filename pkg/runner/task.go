// Package runner expands a manifest into concrete crawl tasks and
// executes them on a bounded worker pool.
package runner

import (
	"github.com/corvus-crawler/corvus/pkg/fetch"
	"github.com/corvus-crawler/corvus/pkg/persist"
)

// Task is one fully rendered fetch-and-persist unit of work. Tasks are
// read-only after expansion; each is owned by exactly one worker.
type Task struct {
	Request fetch.Request    `json:"request"`
	Sinks   []persist.Method `json:"sinks"`
}

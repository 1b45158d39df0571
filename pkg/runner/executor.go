package runner

import (
	"context"
	"time"

	"github.com/corvus-crawler/corvus/pkg/fetch"
	"github.com/corvus-crawler/corvus/pkg/persist"
)

// Fetcher is the crawl capability consumed by the executor.
type Fetcher interface {
	Fetch(ctx context.Context, req *fetch.Request) (*fetch.Result, error)
}

// Persister writes one result to a list of sinks and returns the
// collected sink errors.
type Persister interface {
	Store(ctx context.Context, methods []persist.Method, res *fetch.Result) []error
}

// Executor runs a single task through fetch and persist.
type Executor struct {
	fetcher   Fetcher
	persister Persister
	now       func() time.Time
}

func NewExecutor(f Fetcher, p Persister) *Executor {
	return &Executor{fetcher: f, persister: p, now: time.Now}
}

// Run executes the task pipeline: fetch, then every sink in declared
// order. The task succeeds when at least one sink accepted the payload.
func (e *Executor) Run(ctx context.Context, task Task) Outcome {
	t0 := e.now()

	res, err := e.fetcher.Fetch(ctx, &task.Request)
	if err != nil {
		return Outcome{
			Task:    task,
			TotalMS: e.since(t0),
			Err:     err,
		}
	}

	p0 := e.now()
	perrs := e.persister.Store(ctx, task.Sinks, res)
	persistMS := e.since(p0)

	out := Outcome{
		Task:          task,
		TotalMS:       e.since(t0),
		PersistMS:     persistMS,
		Result:        res,
		PersistErrors: perrs,
	}
	if len(task.Sinks) > 0 && len(perrs) >= len(task.Sinks) {
		out.Err = &PersistFailedError{Errors: perrs}
	}
	return out
}

func (e *Executor) since(t time.Time) int64 {
	return e.now().Sub(t).Milliseconds()
}

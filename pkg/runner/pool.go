package runner

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/corvus-crawler/corvus/pkg/fetch"
)

// Pool runs tasks with bounded parallelism. Outcomes are collected in
// submission order regardless of completion order.
type Pool struct {
	size    int
	limiter *rate.Limiter
}

// NewPool builds a pool of the given size. A size below 1 is treated
// as 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{size: size}
}

// WithRateLimit caps task starts per second across all workers. A
// non-positive value leaves the pool unlimited.
func (p *Pool) WithRateLimit(perSecond float64) *Pool {
	if perSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return p
}

// Run executes every task and blocks until all outcomes are in. A
// panicking task is contained to its own slot and recorded as a
// failure.
func (p *Pool) Run(ctx context.Context, exec *Executor, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))
	sem := make(chan struct{}, p.size)

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(slot int, task Task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if p.limiter != nil {
				if err := p.limiter.Wait(ctx); err != nil {
					outcomes[slot] = Outcome{Task: task, Err: &fetch.Error{Kind: fetch.KindOther, Detail: fmt.Sprintf("rate limiter: %v", err)}}
					return
				}
			}
			outcomes[slot] = p.runContained(ctx, exec, task)
		}(i, task)
	}
	wg.Wait()
	return outcomes
}

// runContained isolates worker panics so one task cannot take down its
// peers.
func (p *Pool) runContained(ctx context.Context, exec *Executor, task Task) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{
				Task: task,
				Err:  &fetch.Error{Kind: fetch.KindOther, Detail: fmt.Sprintf("task panicked: %v", r)},
			}
		}
	}()
	return exec.Run(ctx, task)
}

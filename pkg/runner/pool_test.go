package runner

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvus-crawler/corvus/pkg/fetch"
	"github.com/corvus-crawler/corvus/pkg/persist"
)

// trackingFetcher records peak concurrency and answers with a body that
// names the requested URL.
type trackingFetcher struct {
	mu      sync.Mutex
	active  int
	peak    int
	panicOn string
}

func (f *trackingFetcher) Fetch(ctx context.Context, req *fetch.Request) (*fetch.Result, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if req.URL == f.panicOn {
		panic("worker exploded")
	}
	return &fetch.Result{Status: 200, Body: []byte(req.URL)}, nil
}

type okPersister struct{}

func (okPersister) Store(ctx context.Context, methods []persist.Method, res *fetch.Result) []error {
	return nil
}

func poolTasks(n int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{
			Request: fetch.Request{URL: fmt.Sprintf("http://t/%d", i), TimeoutSeconds: 1},
			Sinks:   []persist.Method{{Kind: persist.KindLocalFile, Path: "o"}},
		}
	}
	return tasks
}

func TestPoolCollectsInSubmissionOrder(t *testing.T) {
	f := &trackingFetcher{}
	exec := NewExecutor(f, okPersister{})
	outcomes := NewPool(4).Run(context.Background(), exec, poolTasks(20))

	require.Len(t, outcomes, 20)
	for i, out := range outcomes {
		require.False(t, out.Failed())
		assert.Equal(t, fmt.Sprintf("http://t/%d", i), string(out.Result.Body))
	}
	assert.LessOrEqual(t, f.peak, 4)
}

func TestPoolSerialWhenSizeOne(t *testing.T) {
	f := &trackingFetcher{}
	exec := NewExecutor(f, okPersister{})
	outcomes := NewPool(1).Run(context.Background(), exec, poolTasks(5))

	require.Len(t, outcomes, 5)
	assert.Equal(t, 1, f.peak)
}

func TestPoolContainsPanics(t *testing.T) {
	f := &trackingFetcher{panicOn: "http://t/2"}
	exec := NewExecutor(f, okPersister{})
	outcomes := NewPool(3).Run(context.Background(), exec, poolTasks(5))

	require.Len(t, outcomes, 5)
	assert.True(t, outcomes[2].Failed())
	assert.Equal(t, 800, outcomes[2].Code())
	assert.Contains(t, outcomes[2].Detail(), "worker exploded")
	for i, out := range outcomes {
		if i == 2 {
			continue
		}
		assert.False(t, out.Failed(), i)
	}
}

func TestPoolRateLimit(t *testing.T) {
	f := &trackingFetcher{}
	exec := NewExecutor(f, okPersister{})
	outcomes := NewPool(4).WithRateLimit(1000).Run(context.Background(), exec, poolTasks(8))
	require.Len(t, outcomes, 8)
	for _, out := range outcomes {
		assert.False(t, out.Failed())
	}
}

package runner

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvus-crawler/corvus/pkg/fetch"
	"github.com/corvus-crawler/corvus/pkg/persist"
)

type stubFetcher struct {
	res   *fetch.Result
	err   error
	calls atomic.Int32
}

func (f *stubFetcher) Fetch(ctx context.Context, req *fetch.Request) (*fetch.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type stubPersister struct {
	errs  []error
	calls atomic.Int32
}

func (p *stubPersister) Store(ctx context.Context, methods []persist.Method, res *fetch.Result) []error {
	p.calls.Add(1)
	return p.errs
}

func twoSinkTask() Task {
	return Task{
		Request: fetch.Request{URL: "http://t/1", TimeoutSeconds: 1},
		Sinks: []persist.Method{
			{Kind: persist.KindLocalFile, Path: "o.html"},
			{Kind: persist.KindAmazonS3, Bucket: "b", Key: "k"},
		},
	}
}

func TestExecutorSuccess(t *testing.T) {
	f := &stubFetcher{res: &fetch.Result{Status: 200, Body: []byte("x")}}
	p := &stubPersister{}
	out := NewExecutor(f, p).Run(context.Background(), twoSinkTask())

	assert.False(t, out.Failed())
	assert.Equal(t, 0, out.Code())
	assert.Equal(t, "success", out.Label())
	assert.Equal(t, "success", out.Detail())
	assert.NotNil(t, out.Result)
	assert.Empty(t, out.PersistErrors)
}

func TestExecutorPartialPersistIsSuccess(t *testing.T) {
	f := &stubFetcher{res: &fetch.Result{Status: 200}}
	p := &stubPersister{errs: []error{
		&persist.SinkError{Kind: persist.KindAmazonS3, Dest: "s3://b/k", Err: assert.AnError},
	}}
	out := NewExecutor(f, p).Run(context.Background(), twoSinkTask())

	assert.False(t, out.Failed())
	assert.Equal(t, 0, out.Code())
	require.Len(t, out.PersistErrors, 1)
}

func TestExecutorAllSinksFailedIsFailure(t *testing.T) {
	f := &stubFetcher{res: &fetch.Result{Status: 200}}
	p := &stubPersister{errs: []error{assert.AnError, assert.AnError}}
	out := NewExecutor(f, p).Run(context.Background(), twoSinkTask())

	assert.True(t, out.Failed())
	assert.Equal(t, PersistFailedCode, out.Code())
	assert.Equal(t, "persist failed", out.Label())
	assert.NotNil(t, out.Result)
}

func TestExecutorFetchFailureSkipsPersist(t *testing.T) {
	f := &stubFetcher{err: &fetch.Error{Kind: fetch.KindTimeout, TimeoutSeconds: 2, RetryCount: 1}}
	p := &stubPersister{}
	out := NewExecutor(f, p).Run(context.Background(), twoSinkTask())

	assert.True(t, out.Failed())
	assert.Equal(t, 600, out.Code())
	assert.Equal(t, "timeout", out.Label())
	assert.Nil(t, out.Result)
	assert.Equal(t, int32(0), p.calls.Load())
}

package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvus-crawler/corvus/pkg/fetch"
)

func TestMethodTarget(t *testing.T) {
	local := Method{Kind: KindLocalFile, Path: "out/{{id}}.html"}
	assert.Equal(t, "out/{{id}}.html", local.Target())
	assert.Equal(t, "out/1.html", local.WithTarget("out/1.html").Path)
	assert.Equal(t, "file://out/1.html", local.WithTarget("out/1.html").Destination())

	s3m := Method{Kind: KindAmazonS3, Region: "ap-northeast-1", Bucket: "b", Key: "k/{{id}}"}
	assert.Equal(t, "k/{{id}}", s3m.Target())
	assert.Equal(t, "s3://b/k/1", s3m.WithTarget("k/1").Destination())
}

func TestLocalSinkCreatesParentsAndTruncates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "page.html")
	m := Method{Kind: KindLocalFile, Path: path}
	sink := NewLocalSink()

	require.NoError(t, sink.Store(context.Background(), m, &fetch.Result{Body: []byte("long first body")}))
	require.NoError(t, sink.Store(context.Background(), m, &fetch.Result{Body: []byte("short")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestLocalSinkWrapsFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory at the target path makes os.Create fail.
	m := Method{Kind: KindLocalFile, Path: dir}
	err := NewLocalSink().Store(context.Background(), m, &fetch.Result{Body: []byte("x")})
	require.Error(t, err)

	var serr *SinkError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, KindLocalFile, serr.Kind)
	assert.Contains(t, serr.Error(), "failed to write local file")
}

type stubSink struct {
	calls int
	err   error
}

func (s *stubSink) Store(ctx context.Context, m Method, res *fetch.Result) error {
	s.calls++
	return s.err
}

func TestDispatcherAttemptsAllSinks(t *testing.T) {
	local := &stubSink{}
	s3 := &stubSink{err: &SinkError{Kind: KindAmazonS3, Dest: "s3://b/k", Err: errors.New("connect refused")}}
	d := NewDispatcher(local, s3)

	methods := []Method{
		{Kind: KindAmazonS3, Bucket: "b", Key: "k"},
		{Kind: KindLocalFile, Path: "out.html"},
	}
	errs := d.Store(context.Background(), methods, &fetch.Result{Body: []byte("x")})

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "failed to put to s3")
	assert.Equal(t, 1, local.calls)
	assert.Equal(t, 1, s3.calls)
}

func TestDispatcherUnknownKind(t *testing.T) {
	d := NewDispatcher(&stubSink{}, &stubSink{})
	errs := d.Store(context.Background(), []Method{{Kind: "ftp"}}, &fetch.Result{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "unknown sink kind")
}

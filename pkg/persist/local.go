package persist

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/corvus-crawler/corvus/pkg/fetch"
)

// LocalSink writes results to the local filesystem. Missing parent
// directories are created; an existing file is truncated.
type LocalSink struct{}

func NewLocalSink() *LocalSink {
	return &LocalSink{}
}

func (s *LocalSink) Store(ctx context.Context, m Method, res *fetch.Result) error {
	_ = ctx
	if dir := filepath.Dir(m.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &SinkError{Kind: m.Kind, Dest: m.Destination(), Err: err}
		}
	}

	f, err := os.Create(m.Path)
	if err != nil {
		return &SinkError{Kind: m.Kind, Dest: m.Destination(), Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.Write(res.Body); err != nil {
		return &SinkError{Kind: m.Kind, Dest: m.Destination(), Err: err}
	}
	if err := w.Flush(); err != nil {
		return &SinkError{Kind: m.Kind, Dest: m.Destination(), Err: err}
	}
	if err := f.Close(); err != nil {
		return &SinkError{Kind: m.Kind, Dest: m.Destination(), Err: err}
	}
	return nil
}

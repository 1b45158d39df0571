// Package persist writes fetched payloads to their configured sinks.
//
// A task carries an ordered list of persistence methods. The dispatcher
// attempts every sink and collects failures; one working sink is enough
// for the task to count as persisted.
package persist

import (
	"context"
	"fmt"

	"github.com/corvus-crawler/corvus/pkg/fetch"
)

// Kind identifies a sink backend.
type Kind string

const (
	KindLocalFile Kind = "local_file"
	KindAmazonS3  Kind = "amazon_s3"
)

// Method is a concrete persistence destination. Path is set for local
// file sinks; Region, Bucket, and Key for S3 sinks. Path and Key start
// out as template strings and are rendered per task before dispatch.
type Method struct {
	Kind   Kind   `json:"kind"`
	Path   string `json:"path,omitempty"`
	Region string `json:"region,omitempty"`
	Bucket string `json:"bucket,omitempty"`
	Key    string `json:"key,omitempty"`
}

// Target returns the templated portion of the destination, the local
// path or the object key.
func (m Method) Target() string {
	if m.Kind == KindAmazonS3 {
		return m.Key
	}
	return m.Path
}

// WithTarget returns a copy of the method with the rendered path or key.
func (m Method) WithTarget(target string) Method {
	if m.Kind == KindAmazonS3 {
		m.Key = target
	} else {
		m.Path = target
	}
	return m
}

// Destination renders the sink as a URI for logs and error messages.
func (m Method) Destination() string {
	if m.Kind == KindAmazonS3 {
		return fmt.Sprintf("s3://%s/%s", m.Bucket, m.Key)
	}
	return "file://" + m.Path
}

// Sink stores a crawl result at a single destination.
type Sink interface {
	Store(ctx context.Context, m Method, res *fetch.Result) error
}

// Dispatcher routes methods to their backend sinks.
type Dispatcher struct {
	local Sink
	s3    Sink
}

// NewDispatcher wires the backend sinks. Either may be replaced in
// tests.
func NewDispatcher(local, s3 Sink) *Dispatcher {
	return &Dispatcher{local: local, s3: s3}
}

// NewDefaultDispatcher builds a dispatcher with the production sinks.
func NewDefaultDispatcher() *Dispatcher {
	return NewDispatcher(NewLocalSink(), NewS3Sink())
}

// Store writes the result to every method in declared order and returns
// the collected sink errors. A failing sink never prevents the others
// from being attempted.
func (d *Dispatcher) Store(ctx context.Context, methods []Method, res *fetch.Result) []error {
	var errs []error
	for _, m := range methods {
		var sink Sink
		switch m.Kind {
		case KindLocalFile:
			sink = d.local
		case KindAmazonS3:
			sink = d.s3
		default:
			errs = append(errs, fmt.Errorf("unknown sink kind: %s", m.Kind))
			continue
		}
		if err := sink.Store(ctx, m, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

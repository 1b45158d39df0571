package runner

import (
	"errors"
	"strings"

	"github.com/corvus-crawler/corvus/pkg/fetch"
)

// PersistFailedCode is the metric code recorded when every sink of a
// task failed.
const PersistFailedCode = 1000

// PersistFailedError marks a task whose fetch succeeded but whose
// sinks all failed.
type PersistFailedError struct {
	Errors []error
}

func (e *PersistFailedError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return "persist failed: " + strings.Join(msgs, "; ")
}

// Outcome is the terminal state of one task. Err is nil on success.
// Result is set whenever the fetch itself completed, including on
// persist failure.
type Outcome struct {
	Task          Task
	TotalMS       int64
	PersistMS     int64
	Result        *fetch.Result
	PersistErrors []error
	Err           error
}

// Failed reports whether the task ended as a failure, meaning the fetch
// failed or every sink failed.
func (o *Outcome) Failed() bool {
	return o.Err != nil
}

// Code is the numeric metric code: 0 on success, the fetch error code,
// or PersistFailedCode.
func (o *Outcome) Code() int {
	if o.Err == nil {
		return 0
	}
	var ferr *fetch.Error
	if errors.As(o.Err, &ferr) {
		return ferr.Code()
	}
	return PersistFailedCode
}

// Label is the short outcome class used in metrics and notifications.
func (o *Outcome) Label() string {
	if o.Err == nil {
		return "success"
	}
	var ferr *fetch.Error
	if errors.As(o.Err, &ferr) {
		return ferr.Label()
	}
	return "persist failed"
}

// Detail stringifies the outcome for the metric record.
func (o *Outcome) Detail() string {
	if o.Err == nil {
		return "success"
	}
	return o.Err.Error()
}

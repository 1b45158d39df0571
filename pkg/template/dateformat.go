package template

import (
	"time"

	"github.com/ncruces/go-strftime"
)

// DateFormatter renders strftime-style directives (%Y, %m, %d, ...)
// against a single captured instant, so that every template expanded in
// one run agrees on "now".
type DateFormatter struct {
	now time.Time
}

// NewDateFormatter binds a formatter to the given instant.
func NewDateFormatter(now time.Time) DateFormatter {
	return DateFormatter{now: now}
}

// Apply substitutes all date directives in s. Text without directives
// passes through unchanged.
func (f DateFormatter) Apply(s string) string {
	return strftime.Format(s, f.now)
}

// Now returns the instant the formatter is bound to.
func (f DateFormatter) Now() time.Time {
	return f.now
}

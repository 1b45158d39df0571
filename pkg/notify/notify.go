// Package notify delivers run notifications to configured sinks.
package notify

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Level is a notification severity. Sinks subscribe to a minimum level
// and ignore anything below it.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel reads a severity name from configuration.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown notify level: %q", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// Notifier delivers one message to a sink.
type Notifier interface {
	Notify(level Level, label, message string) error
}

// Multi fans a notification out to every sink. Delivery failures are
// logged and do not stop the remaining sinks.
type Multi struct {
	sinks []Notifier
	log   *zap.Logger
}

func NewMulti(log *zap.Logger, sinks ...Notifier) *Multi {
	if log == nil {
		log = zap.NewNop()
	}
	return &Multi{sinks: sinks, log: log}
}

func (m *Multi) Notify(level Level, label, message string) error {
	for _, s := range m.sinks {
		if err := s.Notify(level, label, message); err != nil {
			m.log.Warn("notification delivery failed",
				zap.String("label", label),
				zap.Error(err))
		}
	}
	return nil
}

// Package observability holds the process-wide logger. The logger
// always writes to stderr; file output is added when the manifest
// configures it.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/corvus-crawler/corvus/pkg/manifest"
)

// CLILogger is the shared logger. It defaults to stderr at info level
// and is replaced by Init once the manifest is loaded. Replace happens
// before any worker starts; afterwards the logger is read-only and safe
// for concurrent use.
var CLILogger = newConsoleLogger(zapcore.InfoLevel)

func newConsoleLogger(level zapcore.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// Init rebuilds CLILogger from the manifest's log section. With a file
// configured, log lines go to both stderr and the file (append-only,
// JSON encoded).
func Init(cfg manifest.LogConfig) error {
	level := zapcore.InfoLevel
	if cfg.File != nil {
		parsed, err := zapcore.ParseLevel(cfg.File.Level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}

	if cfg.File != nil {
		f, err := os.OpenFile(cfg.File.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.Lock(f),
			level,
		))
	}

	CLILogger = zap.New(zapcore.NewTee(cores...))
	return nil
}

// Sync flushes buffered log entries. Errors are ignored; stderr cannot
// be synced on every platform.
func Sync() {
	_ = CLILogger.Sync()
}

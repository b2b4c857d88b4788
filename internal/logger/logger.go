package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger

// Init builds the process-wide logger and installs it as the zap global.
// Format "json" produces structured production output, anything else a
// human-readable console encoder.
func Init(level, format string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	global = l
	zap.ReplaceGlobals(l)
	return nil
}

// L returns the process logger, or a no-op logger before Init has run.
func L() *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}
	return global
}

// S returns the sugared form of L.
func S() *zap.SugaredLogger {
	return L().Sugar()
}

// Sync flushes buffered entries. Meant for deferred calls on exit.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}

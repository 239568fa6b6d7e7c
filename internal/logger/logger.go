// Package logger holds the process-wide structured logger.
package logger

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global atomic.Pointer[zap.SugaredLogger]

// Init builds the global logger. format is "json" for production encoding or
// "text" (or "console") for human-readable output; unknown levels fall back to info.
func Init(level string, format string) error {
	var config zap.Config
	switch format {
	case "json", "":
		config = zap.NewProductionConfig()
	case "console", "text":
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	l, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return err
	}
	global.Store(l.Sugar())
	return nil
}

// Get returns the global logger, or a development logger if Init was never called.
func Get() *zap.SugaredLogger {
	if l := global.Load(); l != nil {
		return l
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return Nop()
	}
	s := l.Sugar()
	if global.CompareAndSwap(nil, s) {
		return s
	}
	return global.Load()
}

// Set replaces the global logger. Tests use it with zaptest loggers.
func Set(l *zap.SugaredLogger) {
	global.Store(l)
}

// With returns a child of the global logger carrying key/value pairs.
func With(args ...any) *zap.SugaredLogger {
	return Get().With(args...)
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Sync flushes buffered entries of the global logger.
func Sync() error {
	if l := global.Load(); l != nil {
		return l.Sync()
	}
	return nil
}

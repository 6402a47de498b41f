package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// defaultLogger backs the package-level functions. Commands reconfigure it
// from flags while parsing, so it is swapped atomically.
var defaultLogger atomic.Pointer[Logger]

func init() {
	l := Make(os.Stderr)
	defaultLogger.Store(&l)
}

// Config applies opts to the default logger.
func Config(opts ...Option) {
	for {
		prev := defaultLogger.Load()
		next := prev.Wrap(opts...)

		if defaultLogger.CompareAndSwap(prev, &next) {
			return
		}
	}
}

// Default returns the default logger.
func Default() Logger { return *defaultLogger.Load() }

// TraceContext logs at [LevelTrace] with the default logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelTrace, msg, attrs)
}

// DebugContext logs at [LevelDebug] with the default logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelDebug, msg, attrs)
}

// Error logs at [LevelError] with the default logger.
func Error(msg string, attrs ...slog.Attr) {
	Default().log(context.Background(), LevelError, msg, attrs)
}

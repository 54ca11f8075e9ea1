package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// DefaultContextProvider supplies the context for logging calls that do not
// take one.
var DefaultContextProvider = context.TODO

var (
	defaultMu  sync.RWMutex
	defaultLog = Make(os.Stderr)
)

// Config applies opts over the package-level logger's configuration.
func Config(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = defaultLog.Wrap(opts...)
}

// Default returns the package-level logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLog
}

func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().emit(ctx, LevelTrace, msg, attrs)
}

func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().emit(ctx, LevelDebug, msg, attrs)
}

func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().emit(ctx, LevelInfo, msg, attrs)
}

func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().emit(ctx, LevelWarn, msg, attrs)
}

func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().emit(ctx, LevelError, msg, attrs)
}

func Trace(msg string, attrs ...slog.Attr) {
	Default().emit(DefaultContextProvider(), LevelTrace, msg, attrs)
}

func Debug(msg string, attrs ...slog.Attr) {
	Default().emit(DefaultContextProvider(), LevelDebug, msg, attrs)
}

func Info(msg string, attrs ...slog.Attr) {
	Default().emit(DefaultContextProvider(), LevelInfo, msg, attrs)
}

func Warn(msg string, attrs ...slog.Attr) {
	Default().emit(DefaultContextProvider(), LevelWarn, msg, attrs)
}

func Error(msg string, attrs ...slog.Attr) {
	Default().emit(DefaultContextProvider(), LevelError, msg, attrs)
}

package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger writes leveled, structured records through [slog].
// The zero value discards everything.
type Logger struct {
	*slog.Logger
	cfg config
}

// Make returns a Logger writing to w. Without options it logs text at
// [DefaultLevel] with RFC 3339 timestamps and pretty printing.
func Make(w io.Writer, opts ...Option) Logger {
	return build(defaults(w).with(opts...))
}

func build(cfg config) Logger {
	return Logger{Logger: slog.New(cfg.handler()), cfg: cfg}
}

// Wrap returns a Logger with opts applied over l's configuration.
// Attributes added with [Logger.With] are not carried over.
func (l Logger) Wrap(opts ...Option) Logger {
	cfg := l.cfg
	if l.Logger == nil {
		cfg = defaults(nil)
	}

	return build(cfg.with(opts...))
}

// With returns a Logger that adds attrs to every record.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil || len(attrs) == 0 {
		return l
	}

	l.Logger = slog.New(l.Handler().WithAttrs(attrs))

	return l
}

// Level returns the minimum level written.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	return l.cfg.level
}

// Format returns the record encoding.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	return l.cfg.format
}

// Log writes a record at level.
func (l Logger) Log(ctx context.Context, level Level, msg string, attrs ...slog.Attr) {
	l.emit(ctx, level, msg, attrs)
}

func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelTrace, msg, attrs)
}

func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelDebug, msg, attrs)
}

func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelInfo, msg, attrs)
}

func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelWarn, msg, attrs)
}

func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelError, msg, attrs)
}

func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelTrace, msg, attrs)
}

func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelDebug, msg, attrs)
}

func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelInfo, msg, attrs)
}

func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelWarn, msg, attrs)
}

func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelError, msg, attrs)
}

// emit must be called directly by every exported logging function so that
// the caller recorded in the source attribute is the one outside this
// package.
func (l Logger) emit(ctx context.Context, level Level, msg string, attrs []slog.Attr) {
	if l.Logger == nil {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if !l.Enabled(ctx, slog.Level(level)) {
		return
	}

	var pc uintptr

	if l.cfg.caller {
		var pcs [1]uintptr

		// runtime.Callers, emit, exported function.
		runtime.Callers(3, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pc)
	r.AddAttrs(attrs...)

	_ = l.Handler().Handle(ctx, r)
}

// Err is the conventional attribute for an error.
func Err(err error) slog.Attr { return slog.Any("error", err) }

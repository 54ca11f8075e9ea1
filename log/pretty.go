package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// colorEnabled reports whether w is a terminal that accepts ANSI escapes.
// Writers that are not files never receive color.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	fd := f.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newPrettyTextHandler returns a tint handler configured from opts.
// Trace records keep their own short label since tint only knows the four
// slog levels.
func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	color bool,
) slog.Handler {
	replace := opts.ReplaceAttr

	return tint.NewHandler(w, &tint.Options{
		AddSource:  opts.AddSource,
		Level:      opts.Level,
		NoColor:    !color,
		TimeFormat: time.DateTime,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.LevelKey {
				if level, ok := a.Value.Any().(slog.Level); ok &&
					level < slog.LevelDebug {
					return slog.String(slog.LevelKey, "TRC")
				}

				return a
			}

			if replace != nil {
				return replace(groups, a)
			}

			return a
		},
	})
}

// prettyJSONHandler renders each record with slog's JSON handler and then
// re-indents it, one attribute per line.
type prettyJSONHandler struct {
	inner slog.Handler
	sink  *jsonSink
}

// jsonSink is shared by every handler derived from the same root so that
// WithAttrs and WithGroup keep writing through one buffer and lock.
type jsonSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
	out io.Writer
}

func (s *jsonSink) Write(p []byte) (int, error) { return s.buf.Write(p) }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	sink := &jsonSink{out: w}

	return &prettyJSONHandler{
		inner: slog.NewJSONHandler(sink, opts),
		sink:  sink,
	}
}

func (h *prettyJSONHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *prettyJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.buf.Reset()

	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(h.sink.buf.Bytes()), "", "  "); err != nil {
		return err
	}

	out.WriteByte('\n')

	_, err := h.sink.out.Write(out.Bytes())

	return err
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{inner: h.inner.WithAttrs(attrs), sink: h.sink}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{inner: h.inner.WithGroup(name), sink: h.sink}
}

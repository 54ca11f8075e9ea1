package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var entry map[string]any
	if err := json.Unmarshal(b, &entry); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}

	return entry
}

func jsonLogger(buf *bytes.Buffer, opts ...Option) Logger {
	base := []Option{WithFormat(FormatJSON), WithPretty(false), WithTimeLayout("none")}

	return Make(buf, append(base, opts...)...)
}

func TestMake_Defaults(t *testing.T) {
	l := Make(nil)

	if l.Level() != DefaultLevel {
		t.Errorf("level = %v", l.Level())
	}

	if l.Format() != DefaultFormat {
		t.Errorf("format = %v", l.Format())
	}

	if l.cfg.caller || !l.cfg.pretty {
		t.Errorf("unexpected defaults %+v", l.cfg)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	tests := []struct {
		min    Level
		at     Level
		logged bool
	}{
		{LevelTrace, LevelTrace, true},
		{LevelDebug, LevelTrace, false},
		{LevelInfo, LevelDebug, false},
		{LevelInfo, LevelInfo, true},
		{LevelWarn, LevelInfo, false},
		{LevelError, LevelWarn, false},
		{LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.min.String()+"/"+tt.at.String(), func(t *testing.T) {
			var buf bytes.Buffer

			jsonLogger(&buf, WithLevel(tt.min)).Log(t.Context(), tt.at, "m")

			if logged := buf.Len() > 0; logged != tt.logged {
				t.Errorf("logged = %v, want %v", logged, tt.logged)
			}
		})
	}
}

func TestLogger_Methods(t *testing.T) {
	ctx := t.Context()

	tests := []struct {
		label string
		call  func(Logger)
	}{
		{"TRACE", func(l Logger) { l.Trace("m") }},
		{"TRACE", func(l Logger) { l.TraceContext(ctx, "m") }},
		{"DEBUG", func(l Logger) { l.Debug("m") }},
		{"DEBUG", func(l Logger) { l.DebugContext(ctx, "m") }},
		{"INFO", func(l Logger) { l.Info("m") }},
		{"INFO", func(l Logger) { l.InfoContext(ctx, "m") }},
		{"WARN", func(l Logger) { l.Warn("m") }},
		{"WARN", func(l Logger) { l.WarnContext(ctx, "m") }},
		{"ERROR", func(l Logger) { l.Error("m") }},
		{"ERROR", func(l Logger) { l.ErrorContext(ctx, "m") }},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			var buf bytes.Buffer

			tt.call(jsonLogger(&buf, WithLevel(LevelTrace)))

			entry := decode(t, buf.Bytes())
			if entry["level"] != tt.label {
				t.Errorf("level = %v, want %s", entry["level"], tt.label)
			}

			if _, ok := entry["time"]; ok {
				t.Error("time written with layout none")
			}
		})
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	jsonLogger(&buf, WithCaller(true)).Info("here")

	entry := decode(t, buf.Bytes())

	src, ok := entry["source"].(map[string]any)
	if !ok {
		t.Fatalf("missing source in %v", entry)
	}

	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("source file = %q, want the calling test file", file)
	}

	buf.Reset()
	jsonLogger(&buf).Info("here")

	if _, ok := decode(t, buf.Bytes())["source"]; ok {
		t.Error("source written with caller disabled")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	base := jsonLogger(&buf)
	scoped := base.With(slog.String("script", "setup.whale"))

	scoped.Info("run", Err(errors.New("boom")))

	entry := decode(t, buf.Bytes())
	if entry["script"] != "setup.whale" || entry["error"] != "boom" {
		t.Errorf("entry = %v", entry)
	}

	buf.Reset()
	base.Info("plain")

	if _, ok := decode(t, buf.Bytes())["script"]; ok {
		t.Error("With modified the receiver")
	}

	if scoped.Level() != base.Level() {
		t.Error("With lost the configuration")
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	l := jsonLogger(&buf).Wrap(WithLevel(LevelWarn))

	l.Info("dropped")
	l.Warn("kept")

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Fatalf("wrote %d records: %s", got, buf.String())
	}

	if l.Format() != FormatJSON {
		t.Errorf("Wrap lost the format: %v", l.Format())
	}
}

func TestLogger_Zero(t *testing.T) {
	var l Logger

	l.Info("nothing")
	l.ErrorContext(context.Background(), "nothing")

	if w := l.With(slog.Int("n", 1)); w.Logger != nil {
		t.Error("With on the zero Logger created a handler")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("zero Logger reports non-default configuration")
	}

	if w := l.Wrap(WithOutput(nil)); w.Logger == nil {
		t.Error("Wrap on the zero Logger returned a zero Logger")
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	l := jsonLogger(&buf)

	var wg sync.WaitGroup

	for i := range 64 {
		wg.Go(func() { l.Info("branch", slog.Int("n", i)) })
	}

	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 64 {
		t.Fatalf("got %d lines", len(lines))
	}

	for _, line := range lines {
		decode(t, []byte(line))
	}
}

func TestLogger_PrettyText(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelTrace), WithTimeLayout("none"))
	l.Trace("parsed", slog.Int("statements", 2))
	l.Warn("slow")

	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Errorf("color written to a buffer: %q", out)
	}

	for _, want := range []string{"TRC parsed", "statements=2", "WRN slow"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestLogger_PrettyJSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none")).
		With(slog.String("task", "async-1"))
	l.Info("done", slog.Int("n", 2))

	if !strings.Contains(buf.String(), "\n  \"msg\": \"done\"") {
		t.Errorf("expected indented output, got %s", buf.String())
	}

	entry := decode(t, buf.Bytes())
	if entry["task"] != "async-1" || entry["n"] != float64(2) {
		t.Errorf("entry = %v", entry)
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(false))

	for b.Loop() {
		buf.Reset()
		l.Info("bench", slog.Int("n", 1))
	}
}

package log

import (
	"bytes"
	"log/slog"
	"slices"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{" debug ", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"warn+2", Level(slog.LevelWarn + 2)},
		{"verbose", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	if got := LevelTrace.String(); got != "trace" {
		t.Errorf("LevelTrace = %q", got)
	}

	if got := Level(slog.LevelInfo + 1).String(); got != "INFO+1" {
		t.Errorf("unnamed level = %q", got)
	}

	want := []string{"trace", "debug", "info", "warn", "error"}
	if got := slices.Collect(Levels()); !slices.Equal(got, want) {
		t.Errorf("Levels() = %v, want %v", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{" JSON", FormatJSON},
		{"text", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFormat(tt.in); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if got := Format(7).String(); got != "Format(7)" {
		t.Errorf("unknown format = %q", got)
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestConfig_With(t *testing.T) {
	base := defaults(nil)

	c := base.with(
		WithLevel(LevelWarn),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(false),
		nil,
	)

	if c.level != LevelWarn || c.format != FormatJSON || !c.caller || c.pretty {
		t.Errorf("options not applied: %+v", c)
	}

	if base.level != DefaultLevel || base.format != DefaultFormat || base.caller || !base.pretty {
		t.Errorf("base config modified: %+v", base)
	}
}

func TestConfig_NilOutputDiscards(t *testing.T) {
	c := defaults(nil)

	if c.output == nil {
		t.Fatal("expected a non-nil writer")
	}

	var buf bytes.Buffer

	c = c.with(WithOutput(&buf))
	if c.output != &buf {
		t.Error("WithOutput did not replace the writer")
	}
}

func TestStampFunc(t *testing.T) {
	at := time.Date(2024, 6, 2, 9, 5, 7, 250_000_000, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-06-02T09:05:07Z"},
		{"rfc-3339-nano", "2024-06-02T09:05:07.25Z"},
		{"DateTime", "2024-06-02 09:05:07"},
		{"kitchen", "9:05AM"},
		{"ms", "Jun  2 09:05:07.250"},
		{"2006/01/02", "2024/06/02"},
		{"none", ""},
		{"OFF", ""},
		{"", ""},
		{" \t", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := stampFunc(tt.layout)(at); got != tt.want {
				t.Errorf("stampFunc(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestConfig_ReplaceAttr(t *testing.T) {
	c := defaults(nil).with(WithTimeLayout("date"))
	at := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)

	if got := c.replaceAttr(nil, slog.Time(slog.TimeKey, at)); got.Value.String() != "2024-06-02" {
		t.Errorf("time = %v", got.Value)
	}

	if got := c.replaceAttr(nil, slog.Any(slog.LevelKey, slog.Level(LevelTrace))); got.Value.String() != "TRACE" {
		t.Errorf("level = %v", got.Value)
	}

	// Attributes inside groups and other time-valued keys are left alone.
	if got := c.replaceAttr(nil, slog.Time("mtime", at)); got.Value.Kind() != slog.KindTime {
		t.Errorf("mtime rewritten to %v", got.Value)
	}

	if got := c.replaceAttr([]string{"g"}, slog.Time(slog.TimeKey, at)); got.Value.Kind() != slog.KindTime {
		t.Errorf("grouped time rewritten to %v", got.Value)
	}

	c = c.with(WithTimeLayout("none"))
	if got := c.replaceAttr(nil, slog.Time(slog.TimeKey, at)); !got.Equal(slog.Attr{}) {
		t.Errorf("expected time to be dropped, got %v", got)
	}
}

func BenchmarkStampFunc(b *testing.B) {
	stamp := stampFunc("RFC3339Nano")
	at := time.Now()

	for b.Loop() {
		_ = stamp(at)
	}
}

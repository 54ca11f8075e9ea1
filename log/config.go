package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// Option adjusts a [Logger] configuration before its handler is built.
type Option func(*config)

// config is immutable once a handler is built from it. Each [Logger] owns
// its copy, so no locking is needed.
type config struct {
	output io.Writer
	stamp  func(time.Time) string
	level  Level
	format Format
	caller bool
	pretty bool
}

func defaults(w io.Writer) config {
	c := config{
		level:  DefaultLevel,
		format: DefaultFormat,
		pretty: true,
	}

	WithOutput(w)(&c)
	WithTimeLayout(time.RFC3339)(&c)

	return c
}

// with returns a copy of c with opts applied.
func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}

func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	switch {
	case c.format == FormatJSON && c.pretty:
		return newPrettyJSONHandler(c.output, opts)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	case c.format == FormatText && c.pretty:
		return newPrettyTextHandler(c.output, opts, colorEnabled(c.output))
	case c.format == FormatText:
		return slog.NewTextHandler(c.output, opts)
	}

	return slog.DiscardHandler
}

// replaceAttr renders timestamps with the configured layout, drops them when
// the layout is empty, and names the trace level.
func (c config) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch v := a.Value.Any().(type) {
	case time.Time:
		if a.Key != slog.TimeKey {
			break
		}

		s := c.stamp(v)
		if s == "" {
			return slog.Attr{}
		}

		return slog.String(a.Key, s)

	case slog.Level:
		if a.Key == slog.LevelKey {
			return slog.String(a.Key, Level(v).label())
		}
	}

	return a
}

// WithOutput sets the destination of records. A nil writer discards them.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	}
}

// WithLevel sets the minimum level of records that are written.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithCaller adds the source location of each log call to its record.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty selects the human-oriented handlers: tint for text and indented
// output for JSON. Color is only used on terminals.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}

// WithTimeLayout sets the timestamp layout.
//
// The layout is either a name such as "RFC3339", "kitchen" or "ms" (matched
// ignoring case and punctuation) or a [time.Time.Format] layout used
// verbatim. A blank layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	stamp := stampFunc(layout)

	return func(c *config) { c.stamp = stamp }
}

var namedLayouts = []struct {
	layout string
	names  []string
}{
	{"", []string{"none", "off"}},
	{time.RFC3339, []string{"rfc3339"}},
	{time.RFC3339Nano, []string{"rfc3339nano"}},
	{time.DateTime, []string{"datetime"}},
	{time.DateOnly, []string{"date", "dateonly"}},
	{time.TimeOnly, []string{"time", "timeonly"}},
	{time.Kitchen, []string{"kitchen"}},
	{time.ANSIC, []string{"ansic"}},
	{time.UnixDate, []string{"unixdate"}},
	{time.RubyDate, []string{"rubydate"}},
	{time.RFC822, []string{"rfc822"}},
	{time.RFC822Z, []string{"rfc822z"}},
	{time.RFC850, []string{"rfc850"}},
	{time.Stamp, []string{"stamp"}},
	{time.StampMilli, []string{"stampmilli", "milli", "ms"}},
	{time.StampMicro, []string{"stampmicro", "micro", "us"}},
	{time.StampNano, []string{"stampnano", "nano", "ns"}},
}

// layoutKey reduces a layout to lower-case letters and digits.
func layoutKey(layout string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		}

		return -1
	}, layout)
}

func stampFunc(layout string) func(time.Time) string {
	key := layoutKey(layout)

	for _, nl := range namedLayouts {
		for _, name := range nl.names {
			if key == name {
				layout = nl.layout
			}
		}
	}

	if key == "" || layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}

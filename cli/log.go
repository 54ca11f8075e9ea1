package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/whale/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, early enough to affect parse errors.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	var levels, formats []string
	for l := range log.Levels() {
		levels = append(levels, l)
	}

	for f := range log.Formats() {
		formats = append(formats, f)
	}

	return kong.Vars{
		"logLevelEnum":  strings.Join(levels, ","),
		"logFormatEnum": strings.Join(formats, ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (f *logConfig) start(ctx context.Context) func() {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return func() {}
}

// scan applies logger flags before kong parses anything, so that the logger
// is configured regardless of flag position. Boolean flags never reach a
// TextUnmarshaler, so they are handled only here.
func (f *logConfig) scan(args []string) {
	bools := map[string]struct {
		field *bool
		apply func(bool) log.Option
	}{
		"pretty": {&f.Pretty, log.WithPretty},
		"caller": {&f.Caller, log.WithCaller},
	}

	texts := map[string]interface{ UnmarshalText([]byte) error }{
		"level":  &f.Level,
		"format": &f.Format,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		negate := strings.HasPrefix(arg, "--no-log-")

		name, ok := strings.CutPrefix(arg, "--log-")
		if negate {
			name, ok = strings.CutPrefix(arg, "--no-log-")
		}

		if !ok {
			continue
		}

		name, value, assigned := strings.Cut(name, "=")

		if b, ok := bools[name]; ok {
			v := true
			if assigned {
				p, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				v = p
			}

			*b.field = v != negate
			log.Config(b.apply(*b.field))

			continue
		}

		if u, ok := texts[name]; ok && !negate {
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}

			_ = u.UnmarshalText([]byte(value))
		}
	}
}

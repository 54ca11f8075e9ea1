package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/whale/lang"
	"github.com/ardnew/whale/log"
)

// resolve returns a [kong.ConfigurationLoader] for config files written in
// the whale language.
//
// The file is executed with only the core macros available, so a config
// file cannot touch the system. Every top-level binding becomes a flag
// value, with nested Maps joined by underscores:
//
//	log_level = "debug";
//	log.pretty = false;
//	jobs = 4;
//
// resolves --log-level=debug, --log-pretty=false and --jobs=4. Flags given on
// the command line override config file values. A file that fails to parse
// or run is logged and ignored.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		in := lang.New(lang.WithLogger(log.Default()), lang.WithCache(false))

		prog, err := in.ParseReader(ctx, r)
		if err != nil {
			log.WarnContext(ctx, "ignoring config", log.Err(err))

			return config{}, nil
		}

		scope := lang.NewScope()
		if _, err := in.Run(ctx, prog, scope); err != nil {
			log.WarnContext(ctx, "ignoring config", log.Err(err))

			return config{}, nil
		}

		cfg := config{}
		cfg.flatten("", scope.Map())

		return cfg, nil
	}
}

// config implements [kong.Resolver] over the flattened bindings of a config
// file.
type config map[string]any

func (c config) flatten(prefix string, m *lang.Map) {
	for k, v := range m.All() {
		key := prefix + k

		switch v.Kind() {
		case lang.KindMap:
			c.flatten(key+"_", v.Map())
		case lang.KindInteger:
			// kong parses numbers from strings
			c[key] = strconv.FormatInt(v.Int(), 10)
		case lang.KindFloat:
			c[key] = strconv.FormatFloat(v.Float(), 'f', -1, 64)
		case lang.KindFunction, lang.KindEmpty:
		default:
			c[key] = lang.ToNative(v)
		}
	}
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. Flag names use hyphens and whale
// identifiers use underscores; both spellings are tried.
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	if v, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}

	return nil, nil
}

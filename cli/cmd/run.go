package cmd

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/whale/lang"
	"github.com/ardnew/whale/log"
)

// Run executes script files in order in one shared scope, so later files see
// the bindings of earlier ones.
type Run struct {
	Define map[string]string `help:"Bind a String variable before running."   placeholder:"NAME=VALUE" short:"D"`
	Print  bool              `help:"Print the value of the last statement."                            short:"p"`
	Format string            `help:"Format of the printed value."             default:"whale"          short:"o" enum:"whale,json,yaml"`

	Files []string `arg:"" default:"-" help:"Script files to run, or '-' for stdin." name:"file"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	in := interpreterFrom(ctx)
	std := streamsFrom(ctx)

	srcs, closeAll, err := openSources(ctx, r.Files)
	if err != nil {
		return err
	}
	defer closeAll()

	scope := lang.NewScope()

	for _, name := range slices.Sorted(maps.Keys(r.Define)) {
		if err := scope.Set(name, lang.String(r.Define[name])); err != nil {
			return err
		}
	}

	result := lang.Empty()

	for _, src := range srcs {
		log.DebugContext(ctx, "run script", slog.String("source", src.name))

		prog, err := in.ParseReader(ctx, src)
		if err != nil {
			return report(std.Err, src.name, err)
		}

		result, err = in.Run(ctx, prog, scope)
		if err != nil {
			return report(std.Err, src.name, err)
		}
	}

	if !r.Print {
		return nil
	}

	return encode(ctx, std.Out, result, r.Format, 2)
}

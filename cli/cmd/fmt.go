package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/whale/log"
)

// Fmt parses a script and prints it in canonical syntax, or dumps its syntax
// tree as JSON or YAML.
type Fmt struct {
	Format string `default:"whale" enum:"whale,json,yaml" help:"Output format; json and yaml dump the syntax tree." short:"o"`
	Indent int    `default:"2"                            help:"Indent width for json and yaml output."            short:"i"`
	Write  bool   `                                       help:"Rewrite the source file instead of printing."      short:"w"`

	Source string `arg:"" default:"-" help:"Source file, or '-' for stdin." name:"source"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if f.Write {
		switch {
		case f.Source == stdinSource:
			return ErrWriteStdin
		case f.Format != formatWhale:
			return ErrWriteFormat.With(slog.String("format", f.Format))
		}
	}

	std := streamsFrom(ctx)

	srcs, closeAll, err := openSources(ctx, []string{f.Source})
	if err != nil {
		return err
	}
	defer closeAll()

	src := srcs[0]

	prog, err := interpreterFrom(ctx).ParseReader(ctx, src)
	if err != nil {
		return report(std.Err, src.name, err)
	}

	var buf bytes.Buffer

	switch f.Format {
	case formatJSON:
		err = prog.FormatJSON(ctx, &buf, f.Indent)
	case formatYAML:
		err = prog.FormatYAML(ctx, &buf, f.Indent)
	default:
		err = prog.Format(ctx, &buf)
	}

	if err != nil {
		return ErrEncode.With(slog.String("format", f.Format)).Wrap(err)
	}

	if !f.Write {
		_, err = buf.WriteTo(std.Out)

		return err
	}

	closeAll()

	mode := os.FileMode(0o644)
	if info, err := os.Stat(f.Source); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(f.Source, buf.Bytes(), mode); err != nil {
		return ErrOpenSource.With(slog.String("path", f.Source)).Wrap(err)
	}

	log.DebugContext(ctx, "formatted file", slog.String("path", f.Source))

	return nil
}

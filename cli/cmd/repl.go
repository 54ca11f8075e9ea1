package cmd

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/ardnew/whale/cli/cmd/repl"
	"github.com/ardnew/whale/lang"
	"github.com/ardnew/whale/log"
)

// Repl starts an interactive session. Files given as arguments run first in
// the session scope.
type Repl struct {
	NoHistory bool `help:"Do not read or write the history file."`

	Files []string `arg:"" help:"Scripts to run before the session starts." name:"file" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	in := interpreterFrom(ctx)
	std := streamsFrom(ctx)
	scope := lang.NewScope()

	srcs, closeAll, err := openSources(ctx, r.Files)
	if err != nil {
		return err
	}
	defer closeAll()

	var session strings.Builder

	for _, src := range srcs {
		data, err := io.ReadAll(src)
		if err != nil {
			return ErrOpenSource.Wrap(err)
		}

		prog, err := in.Parse(ctx, string(data))
		if err != nil {
			return report(std.Err, src.name, err)
		}

		if _, err := in.Run(ctx, prog, scope); err != nil {
			return report(std.Err, src.name, err)
		}

		if err := prog.Format(ctx, &session); err != nil {
			return ErrEncode.Wrap(err)
		}
	}

	return repl.Run(ctx, repl.Config{
		Interp:  in,
		Scope:   scope,
		Source:  session.String(),
		History: r.historyPath(ctx),
		Logger:  log.Default(),
	})
}

func (r *Repl) historyPath(ctx context.Context) string {
	if r.NoHistory {
		return ""
	}

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	dir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok || dir == "" {
		return ""
	}

	return filepath.Join(dir, repl.BaseHistory)
}

package cmd

import (
	"context"

	"github.com/ardnew/whale/lang"
)

// Eval evaluates source given on the command line and prints its value.
type Eval struct {
	Format string `default:"whale" enum:"whale,json,yaml" help:"Result format."                        short:"o"`
	Indent int    `default:"2"                            help:"Indent width for json and yaml output." short:"i"`

	Source string `arg:"" help:"Statements to evaluate." name:"source"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	std := streamsFrom(ctx)

	v, err := interpreterFrom(ctx).Execute(ctx, e.Source, lang.NewScope())
	if err != nil {
		return report(std.Err, "<eval>", err)
	}

	return encode(ctx, std.Out, v, e.Format, e.Indent)
}

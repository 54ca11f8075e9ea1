package builtin

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/ardnew/whale/lang"
)

// Runner starts a process and returns what it wrote to standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs processes on the host with os/exec. The process is killed
// when ctx is done.
type ExecRunner struct {
	Dir string   // working directory; empty means the current one
	Env []string // environment; nil means the current one
}

// Run implements [Runner]. A process that exits with a non-zero status
// fails with [lang.ErrExternal] carrying the exit code and standard error.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Env = r.Env

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		attrs := []slog.Attr{slog.String("command", name)}

		var exit *exec.ExitError
		if errors.As(err, &exit) {
			attrs = append(attrs,
				slog.Int("exit_code", exit.ExitCode()),
				slog.String("stderr", strings.TrimSpace(stderr.String())),
			)
		}

		if ctx.Err() != nil {
			return stdout.String(), context.Cause(ctx)
		}

		return stdout.String(), external(err, attrs...)
	}

	return stdout.String(), nil
}

func (c *config) commandSpecs() []lang.Spec {
	shell := func(name string) lang.Spec {
		return lang.Spec{
			Name:        name,
			Group:       groupCommand,
			Description: "Run a script with " + name + " -c and return its output.",
			Params:      []string{"script"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{stringKind},
			Macro: func(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
				return c.run(ctx, call, name, "-c", call.Arg(0).Str())
			},
		}
	}

	return []lang.Spec{
		shell("sh"),
		shell("bash"),
		shell("fish"),
		shell("zsh"),
		{
			Name:        "raw",
			Group:       groupCommand,
			Description: "Run a command without a shell and return its output. The command is a string split on white space, or a list of words.",
			Params:      []string{"command"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{wordsKind},
			Macro: func(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
				argv, err := words(call.Arg(0))
				if err != nil {
					return lang.Empty(), err
				}

				if len(argv) == 0 {
					return lang.Empty(), lang.ErrArityMismatch.Errorf("raw: empty command")
				}

				return c.run(ctx, call, argv[0], argv[1:]...)
			},
		},
	}
}

// run executes a command through the configured runner and returns its
// output without the trailing newline.
func (c *config) run(
	ctx context.Context,
	call *lang.Invocation,
	name string,
	args ...string,
) (lang.Value, error) {
	call.Logger().DebugContext(ctx, "run command",
		slog.String("macro", call.Name),
		slog.String("command", name),
		slog.Any("args", args),
	)

	out, err := c.runner.Run(ctx, name, args...)
	if err != nil {
		return lang.Empty(), err
	}

	return lang.String(strings.TrimRight(out, "\r\n")), nil
}

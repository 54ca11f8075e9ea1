package builtin

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/whale/lang"
)

func (c *config) generalSpecs() []lang.Spec {
	return []lang.Spec{
		{
			Name:        "output",
			Group:       groupGeneral,
			Description: "Print values separated by spaces. Tables and maps are drawn as grids.",
			Params:      []string{"values"},
			MaxArgs:     lang.Variadic,
			Macro:       c.output,
		},
		{
			Name:        "wait",
			Group:       groupGeneral,
			Description: "Pause for the given number of seconds.",
			Params:      []string{"seconds"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{numberKind},
			Macro:       wait,
		},
		{
			Name:        "repeat",
			Group:       groupGeneral,
			Description: "Evaluate the body n times and collect the results. The iteration number is bound to index.",
			Params:      []string{"n", "body"},
			MinArgs:     2,
			MaxArgs:     2,
			Kinds:       [][]lang.Kind{integerKind},
			Deferred:    []int{1},
			Macro:       repeat,
		},
		{
			Name:        "run",
			Group:       groupGeneral,
			Description: "Run a script file in a child of the current scope and return its result.",
			Params:      []string{"path"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{stringKind},
			Macro:       runFile,
		},
		{
			Name:        "expr",
			Group:       groupGeneral,
			Description: "Evaluate an expr-lang expression. Entries of the optional map are visible as variables.",
			Params:      []string{"source", "env"},
			MinArgs:     1,
			MaxArgs:     2,
			Kinds:       [][]lang.Kind{stringKind, mapKind},
			Macro:       c.expr,
		},
	}
}

func (c *config) output(_ context.Context, call *lang.Invocation) (lang.Value, error) {
	parts := make([]string, len(call.Args))
	for i, a := range call.Args {
		parts[i] = lang.Display(a)
	}

	if _, err := fmt.Fprintln(c.stdout, strings.Join(parts, " ")); err != nil {
		return lang.Empty(), external(err)
	}

	return lang.Empty(), nil
}

func wait(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
	d := time.Duration(call.Arg(0).Float() * float64(time.Second))

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return lang.Empty(), nil
	case <-ctx.Done():
		return lang.Empty(), context.Cause(ctx)
	}
}

func repeat(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
	n := call.Arg(0).Int()
	out := make([]lang.Value, 0, max(n, 0))

	for i := range n {
		if err := ctx.Err(); err != nil {
			return lang.Empty(), context.Cause(ctx)
		}

		v, err := call.Force(ctx, call.Arg(1), lang.MapOf("index", lang.Int(i)))
		if err != nil {
			return lang.Empty(), err
		}

		out = append(out, v)
	}

	return lang.List(out...), nil
}

func runFile(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
	prog, err := call.Interp.ParseFile(ctx, call.Arg(0).Str())
	if err != nil {
		return lang.Empty(), err
	}

	return call.Interp.Run(ctx, prog, call.Scope.Child())
}

func (c *config) expr(_ context.Context, call *lang.Invocation) (lang.Value, error) {
	source := call.Arg(0).Str()

	env := c.exprEnv()
	if m := call.Arg(1).Map(); m != nil {
		native, _ := lang.ToNative(lang.MapValue(m)).(map[string]any)
		maps.Copy(env, native)
	}

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return lang.Empty(), external(err, slog.String("source", source))
	}

	result, err := vm.Run(program, env)
	if err != nil {
		return lang.Empty(), external(err, slog.String("source", source))
	}

	return lang.FromNative(result)
}

// exprEnv returns the variables and functions every expr expression can
// use, before the caller's own map is added.
func (c *config) exprEnv() map[string]any {
	vars := environMap(c.environ)
	goTarget, gnuTarget := platform(), target()

	return map[string]any{
		"target":   map[string]any{"os": gnuTarget.OS, "arch": gnuTarget.Arch},
		"platform": map[string]any{"os": goTarget.OS, "arch": goTarget.Arch},
		"hostname": hostname(),
		"user":     username(),
		"shell":    c.shell(),
		"cwd":      workingDir,
		"env":      func(key string) string { return vars[key] },
		"file": map[string]any{
			"exists":    fileExists,
			"isDir":     fileIsDir,
			"isRegular": fileIsRegular,
			"isSymlink": fileIsSymlink,
		},
		"path": map[string]any{
			"abs": pathAbs,
			"cat": filepath.Join,
			"rel": pathRel,
		},
		"mung": map[string]any{
			"prefix":   mungPrefix,
			"prefixif": mungPrefixIf,
		},
	}
}

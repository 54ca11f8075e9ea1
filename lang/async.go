package lang

import (
	"context"
	"log/slog"

	"go.jetify.com/typeid"
	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one async branch.
type Outcome struct {
	ID    string
	Value Value
	Err   error
}

// Async evaluates each branch concurrently on its own snapshot of scope and
// returns the outcomes in branch order, regardless of completion order.
//
// A failing branch does not cancel its siblings. A String literal branch is
// parsed and run as a script; a branch that evaluates to a Function is
// invoked with no argument.
func (in *Interpreter) Async(ctx context.Context, branches []Node, scope *Scope) []Outcome {
	out := make([]Outcome, len(branches))

	// Snapshots are taken before any branch starts so that every branch
	// observes the scope as it was at the fork.
	snaps := make([]*Scope, len(branches))
	for i := range branches {
		snaps[i] = scope.Snapshot()
		out[i].ID = taskID()
	}

	var g errgroup.Group
	if in.cfg.asyncLimit > 0 {
		g.SetLimit(in.cfg.asyncLimit)
	}

	for i, b := range branches {
		g.Go(func() error {
			out[i].Value, out[i].Err = in.runBranch(ctx, out[i].ID, b, snaps[i])

			return nil
		})
	}

	_ = g.Wait()

	return out
}

func (in *Interpreter) runBranch(
	ctx context.Context,
	id string,
	branch Node,
	scope *Scope,
) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = Empty(), ErrExternal.Errorf("panic: %v", r).
				With(slog.String("task", id))
		}
	}()

	in.cfg.logger.TraceContext(ctx, "async branch started", slog.String("task", id))

	if lit, ok := branch.(*Literal); ok && lit.Value.Kind() == KindString {
		prog, err := in.Parse(ctx, lit.Value.Str())
		if err != nil {
			return Empty(), err
		}

		return in.Run(ctx, prog, scope)
	}

	v, err = in.Evaluate(ctx, branch, scope)
	if err != nil || v.Kind() != KindFunction {
		return v, err
	}

	return in.Invoke(ctx, v)
}

// evalAsync joins the branches into a List. A failed branch contributes its
// error message as a String.
func (in *Interpreter) evalAsync(ctx context.Context, n *AsyncGroup, scope *Scope) (Value, error) {
	outcomes := in.Async(ctx, n.Branches, scope)

	if err := ctx.Err(); err != nil {
		return Empty(), context.Cause(ctx)
	}

	results := make([]Value, len(outcomes))

	for i, o := range outcomes {
		if o.Err != nil {
			in.cfg.logger.WarnContext(ctx, "async branch failed",
				slog.Int("branch", i),
				slog.String("task", o.ID),
				slog.Any("error", o.Err),
			)

			results[i] = String(o.Err.Error())

			continue
		}

		results[i] = o.Value
	}

	return Value{kind: KindList, ref: results}, nil
}

func taskID() string {
	id, err := typeid.WithPrefix("task")
	if err != nil {
		return "task"
	}

	return id.String()
}

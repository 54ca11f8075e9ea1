package lang

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ardnew/whale/log"
)

// Variadic marks a [Spec] that accepts any number of trailing arguments.
const Variadic = -1

// Macro is the native implementation of a named operation.
type Macro func(ctx context.Context, call *Invocation) (Value, error)

// Spec declares a macro and the contract its arguments must satisfy.
type Spec struct {
	Name        string
	Group       string
	Description string
	Params      []string // parameter names, for signatures and hints
	MinArgs     int
	MaxArgs     int // or Variadic
	// Kinds lists the accepted kinds per argument position. A nil entry
	// accepts any kind. When the macro is variadic the last entry also
	// covers every trailing argument.
	Kinds [][]Kind
	// Deferred lists argument positions that are passed unevaluated, as a
	// Function closed over the caller's scope.
	Deferred []int
	Macro    Macro
}

// IsDeferred reports whether argument i is passed unevaluated.
func (s Spec) IsDeferred(i int) bool { return slices.Contains(s.Deferred, i) }

// Signature renders the macro name with its parameter list.
func (s Spec) Signature() string {
	params := slices.Clone(s.Params)
	if s.MaxArgs == Variadic && len(params) > 0 {
		params[len(params)-1] += "..."
	}

	return s.Name + "(" + strings.Join(params, ", ") + ")"
}

func (s Spec) kindsAt(i int) []Kind {
	switch {
	case i < len(s.Kinds):
		return s.Kinds[i]
	case s.MaxArgs == Variadic && len(s.Kinds) > 0:
		return s.Kinds[len(s.Kinds)-1]
	default:
		return nil
	}
}

// Check validates the argument count and kinds.
func (s Spec) Check(args []Value) error {
	n := len(args)
	if n < s.MinArgs || (s.MaxArgs != Variadic && n > s.MaxArgs) {
		return ErrArityMismatch.Errorf("%s expects %s, got %d",
			s.Name, s.arity(), n).
			With(slog.String("macro", s.Name), slog.Int("args", n))
	}

	for i, a := range args {
		if s.IsDeferred(i) {
			continue
		}

		kinds := s.kindsAt(i)
		if len(kinds) == 0 {
			continue
		}

		if err := a.Expect(kinds...); err != nil {
			return WrapError(err).With(
				slog.String("macro", s.Name),
				slog.Int("position", i),
			)
		}
	}

	return nil
}

func (s Spec) arity() string {
	plural := func(n int) string {
		if n == 1 {
			return "1 argument"
		}

		return strconv.Itoa(n) + " arguments"
	}

	switch {
	case s.MaxArgs == Variadic:
		return "at least " + plural(s.MinArgs)
	case s.MinArgs == s.MaxArgs:
		return plural(s.MinArgs)
	default:
		return strconv.Itoa(s.MinArgs) + " to " + plural(s.MaxArgs)
	}
}

// Invocation is passed to a [Macro]: the macro name, its evaluated (or
// deferred) arguments, the caller's scope, and the interpreter running it.
type Invocation struct {
	Name   string
	Args   []Value
	Scope  *Scope
	Interp *Interpreter
	At     Position
}

// Arg returns argument i, or Empty if it was not supplied.
func (c *Invocation) Arg(i int) Value {
	if i < 0 || i >= len(c.Args) {
		return Empty()
	}

	return c.Args[i]
}

// Call invokes fn with arg bound to input.
func (c *Invocation) Call(ctx context.Context, fn, arg Value) (Value, error) {
	return c.Interp.Invoke(ctx, fn, arg)
}

// Force evaluates a deferred argument with bindings added to its scope. A
// Function result is evaluated the same way, so both `if(c, x + 1)` and
// `if(c, { x + 1 })` produce the sum. If bindings holds input, the Function
// result is invoked with it.
func (c *Invocation) Force(ctx context.Context, fn Value, bindings *Map) (Value, error) {
	v, err := c.Interp.Apply(ctx, fn, bindings)
	if err != nil || v.Kind() != KindFunction {
		return v, err
	}

	if input, ok := bindings.Get(InputKey); ok {
		return c.Interp.InvokeWith(ctx, v, input, bindings)
	}

	return c.Interp.Apply(ctx, v, bindings)
}

// Logger returns the interpreter's logger.
func (c *Invocation) Logger() log.Logger { return c.Interp.cfg.logger }

// Registry maps macro names to their specs.
//
// A registry is built once at start-up and then frozen; a frozen registry is
// read-only and safe to share between interpreters and goroutines.
type Registry struct {
	mu     sync.RWMutex
	specs  map[string]Spec
	frozen bool
}

// NewRegistry returns a registry holding the core macros.
func NewRegistry() *Registry {
	r := &Registry{specs: map[string]Spec{}}
	r.MustRegister(coreSpecs()...)

	return r
}

// Register adds specs, failing if the registry is frozen or a name is
// already taken. No spec is added on failure.
func (r *Registry) Register(specs ...Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}

	seen := map[string]bool{}

	for _, s := range specs {
		if _, dup := r.specs[s.Name]; dup || seen[s.Name] {
			return ErrDuplicateMacro.Errorf("%s", s.Name).
				With(slog.String("macro", s.Name))
		}

		seen[s.Name] = true
	}

	for _, s := range specs {
		r.specs[s.Name] = s
	}

	return nil
}

// MustRegister is like Register but panics on failure.
func (r *Registry) MustRegister(specs ...Spec) {
	if err := r.Register(specs...); err != nil {
		panic(err)
	}
}

// Freeze makes the registry read-only and returns it.
func (r *Registry) Freeze() *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true

	return r
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.specs[name]

	return s, ok
}

// All returns every spec, sorted by group and then name.
func (r *Registry) All() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := slices.Collect(maps.Values(r.specs))
	slices.SortFunc(specs, func(a, b Spec) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.Name, b.Name))
	})

	return specs
}

// Names returns every macro name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.specs))
}

// Dispatch validates the invocation against the named spec and runs it.
// Failures that are not already interpreter errors are reported as
// [ErrExternal].
func (r *Registry) Dispatch(ctx context.Context, call *Invocation) (Value, error) {
	spec, ok := r.Lookup(call.Name)
	if !ok {
		return Empty(), ErrUnknownMacro.Errorf("%s", call.Name).
			With(slog.String("macro", call.Name))
	}

	if err := spec.Check(call.Args); err != nil {
		return Empty(), err
	}

	v, err := spec.Macro(ctx, call)
	if err == nil {
		return v, nil
	}

	var (
		ee *Error
		pe *ParseError
	)

	switch {
	case errors.As(err, &ee), errors.As(err, &pe),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Empty(), err
	default:
		return Empty(), ErrExternal.Wrap(err).With(slog.String("macro", call.Name))
	}
}

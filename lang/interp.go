package lang

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/whale/log"
)

// MaxCallDepth bounds how deeply Functions may call one another.
const MaxCallDepth = 10000

type depthKey struct{}

// config holds the options shared by the parser and the interpreter.
type config struct {
	registry   *Registry
	logger     log.Logger
	notifier   Notifier
	asyncLimit int
	cache      bool
}

// Option configures an [Interpreter] (and, where relevant, [Parse]).
type Option func(*config)

// WithRegistry sets the macro registry. The default holds only the core
// macros.
func WithRegistry(r *Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithLogger sets the logger for parse, evaluation, async, and watch events.
// The default discards everything.
func WithLogger(l log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithNotifier sets the change-notification source used by watch. The
// default is an [FSNotifier].
func WithNotifier(n Notifier) Option {
	return func(c *config) { c.notifier = n }
}

// WithAsyncLimit bounds the number of async branches running at once.
// Zero or a negative limit means no bound.
func WithAsyncLimit(n int) Option {
	return func(c *config) { c.asyncLimit = n }
}

// WithCache controls whether parsed sources are cached by content hash.
// Caching is enabled by default.
func WithCache(enable bool) Option {
	return func(c *config) { c.cache = enable }
}

func makeConfig(opts ...Option) config {
	c := config{cache: true}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Interpreter evaluates programs against scopes.
// It holds no per-run state and is safe for concurrent use.
type Interpreter struct {
	cfg config
}

// New returns an Interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	cfg := makeConfig(opts...)

	if cfg.registry == nil {
		cfg.registry = NewRegistry().Freeze()
	}

	if cfg.notifier == nil {
		cfg.notifier = FSNotifier{}
	}

	return &Interpreter{cfg: cfg}
}

// Registry returns the macro registry used for dispatch.
func (in *Interpreter) Registry() *Registry { return in.cfg.registry }

// Logger returns the interpreter's logger.
func (in *Interpreter) Logger() log.Logger { return in.cfg.logger }

// Parse parses source, consulting the parse cache if it is enabled.
func (in *Interpreter) Parse(ctx context.Context, source string) (*Program, error) {
	if in.cfg.cache {
		return parseCached(ctx, source, in.cfg.logger)
	}

	return Parse(ctx, source, WithLogger(in.cfg.logger))
}

// ParseFile reads and parses the script at path.
func (in *Interpreter) ParseFile(ctx context.Context, path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	return in.ParseReader(ctx, f)
}

// ParseReader reads all of r and parses it.
func (in *Interpreter) ParseReader(ctx context.Context, r io.Reader) (*Program, error) {
	source, err := readSource(ctx, r, in.cfg.logger)
	if err != nil {
		return nil, err
	}

	return in.Parse(ctx, source)
}

// Execute parses source and runs it in scope. Nothing is evaluated if
// parsing fails. A nil scope runs the program in a fresh root scope.
func (in *Interpreter) Execute(
	ctx context.Context,
	source string,
	scope *Scope,
) (Value, error) {
	prog, err := in.Parse(ctx, source)
	if err != nil {
		return Empty(), err
	}

	return in.Run(ctx, prog, scope)
}

// Run evaluates a parsed program in scope.
func (in *Interpreter) Run(ctx context.Context, prog *Program, scope *Scope) (Value, error) {
	if scope == nil {
		scope = NewScope()
	}

	in.cfg.logger.TraceContext(ctx, "run program",
		slog.Int("statements", len(prog.Stmts)))

	return in.Evaluate(ctx, prog.Block, scope)
}

// Invoke calls a Function with its single optional argument bound to input.
func (in *Interpreter) Invoke(ctx context.Context, fn Value, args ...Value) (Value, error) {
	if len(args) > 1 {
		return Empty(), ErrArityMismatch.Errorf(
			"function takes at most 1 argument, got %d", len(args))
	}

	var arg Value
	if len(args) == 1 {
		arg = args[0]
	}

	return in.InvokeWith(ctx, fn, arg, nil)
}

// InvokeWith calls a Function with input bound to arg and each entry of
// bindings bound alongside it.
func (in *Interpreter) InvokeWith(
	ctx context.Context,
	fn, arg Value,
	bindings *Map,
) (Value, error) {
	return in.Apply(ctx, fn, bindings.With(InputKey, arg))
}

// Apply evaluates the body of a Function in a child of its defining scope
// holding bindings. Unlike [Interpreter.Invoke] it leaves input untouched,
// so a deferred macro argument sees the caller's input.
func (in *Interpreter) Apply(ctx context.Context, fn Value, bindings *Map) (Value, error) {
	f := fn.Func()
	if f == nil {
		return Empty(), ErrTypeMismatch.Errorf("cannot call %s", fn.Kind())
	}

	depth, _ := ctx.Value(depthKey{}).(int)
	if depth >= MaxCallDepth {
		return Empty(), ErrCallDepth.Errorf("more than %d nested calls", MaxCallDepth)
	}

	ctx = context.WithValue(ctx, depthKey{}, depth+1)

	parent := f.Scope
	if parent == nil {
		parent = NewScope()
	}

	child := parent.Child()
	for k, v := range bindings.All() {
		child.Bind(k, v)
	}

	return in.Evaluate(ctx, f.Body, child)
}

// Execute parses source and runs it in scope with a new [Interpreter]
// configured by opts.
func Execute(
	ctx context.Context,
	source string,
	scope *Scope,
	opts ...Option,
) (Value, error) {
	return New(opts...).Execute(ctx, source, scope)
}

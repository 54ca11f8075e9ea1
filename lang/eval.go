package lang

import (
	"context"
	"log/slog"
	"math"
	"strconv"
)

// Evaluate computes the value of node in scope.
//
// Errors that carry no position yet are tagged with the position of the
// innermost node that produced them.
func (in *Interpreter) Evaluate(ctx context.Context, node Node, scope *Scope) (Value, error) {
	v, err := in.eval(ctx, node, scope)
	if err != nil {
		return Empty(), withPosition(err, node.Pos())
	}

	return v, nil
}

func withPosition(err error, pos Position) error {
	if ee, ok := err.(*Error); ok {
		return ee.WithPosition(pos)
	}

	return err
}

func (in *Interpreter) eval(ctx context.Context, node Node, scope *Scope) (Value, error) {
	switch n := node.(type) {
	case *Literal:
		return n.Value, nil

	case *Identifier:
		return scope.Get(n.Name)

	case *Assignment:
		return in.evalAssignment(ctx, n, scope)

	case *BinaryOp:
		return in.evalBinary(ctx, n, scope)

	case *UnaryOp:
		return in.evalUnary(ctx, n, scope)

	case *Call:
		return in.evalCall(ctx, n, scope)

	case *Yield:
		v, err := in.Evaluate(ctx, n.LHS, scope)
		if err != nil {
			return Empty(), err
		}

		child := scope.Child()
		child.Bind(InputKey, v)

		return in.Evaluate(ctx, n.RHS, child)

	case *FunctionLiteral:
		return FunctionValue(n.Body, scope), nil

	case *ListLiteral:
		elems := make([]Value, len(n.Elems))

		for i, e := range n.Elems {
			v, err := in.Evaluate(ctx, e, scope)
			if err != nil {
				return Empty(), err
			}

			elems[i] = v
		}

		return Value{kind: KindList, ref: elems}, nil

	case *MapLiteral:
		m := NewMap()

		for _, e := range n.Entries {
			v, err := in.Evaluate(ctx, e.Expr, scope)
			if err != nil {
				return Empty(), err
			}

			if m, err = m.WithPath(splitPath(e.Path), v); err != nil {
				return Empty(), withPosition(err, e.At)
			}
		}

		return MapValue(m), nil

	case *Block:
		return in.evalBlock(ctx, n, scope)

	case *AsyncGroup:
		return in.evalAsync(ctx, n, scope)

	case *Watch:
		return in.evalWatch(ctx, n, scope)

	default:
		return Empty(), ErrTypeMismatch.Errorf("cannot evaluate %T", node)
	}
}

func (in *Interpreter) evalBlock(ctx context.Context, b *Block, scope *Scope) (Value, error) {
	result := Empty()

	for _, stmt := range b.Stmts {
		if err := ctx.Err(); err != nil {
			return Empty(), context.Cause(ctx)
		}

		v, err := in.Evaluate(ctx, stmt, scope)
		if err != nil {
			return Empty(), err
		}

		result = v
	}

	return result, nil
}

// compoundOp maps a compound assignment to its arithmetic operator.
var compoundOp = map[TokenKind]TokenKind{
	TokenPlusAssign:  TokenPlus,
	TokenMinusAssign: TokenMinus,
	TokenStarAssign:  TokenStar,
	TokenSlashAssign: TokenSlash,
}

func (in *Interpreter) evalAssignment(
	ctx context.Context,
	n *Assignment,
	scope *Scope,
) (Value, error) {
	v, err := in.Evaluate(ctx, n.Expr, scope)
	if err != nil {
		return Empty(), err
	}

	if op, ok := compoundOp[n.Op]; ok {
		cur, err := scope.Get(n.Path)
		if err != nil {
			return Empty(), err
		}

		if v, err = binary(op, cur, v); err != nil {
			return Empty(), err
		}
	}

	return Empty(), scope.Set(n.Path, v)
}

func (in *Interpreter) evalBinary(ctx context.Context, n *BinaryOp, scope *Scope) (Value, error) {
	lhs, err := in.Evaluate(ctx, n.LHS, scope)
	if err != nil {
		return Empty(), err
	}

	if n.Op == TokenAnd || n.Op == TokenOr {
		if err := lhs.Expect(KindBoolean); err != nil {
			return Empty(), opError(n.Op, err)
		}

		if lhs.Bool() == (n.Op == TokenOr) {
			return lhs, nil
		}

		rhs, err := in.Evaluate(ctx, n.RHS, scope)
		if err != nil {
			return Empty(), err
		}

		if err := rhs.Expect(KindBoolean); err != nil {
			return Empty(), opError(n.Op, err)
		}

		return rhs, nil
	}

	rhs, err := in.Evaluate(ctx, n.RHS, scope)
	if err != nil {
		return Empty(), err
	}

	return binary(n.Op, lhs, rhs)
}

func (in *Interpreter) evalUnary(ctx context.Context, n *UnaryOp, scope *Scope) (Value, error) {
	v, err := in.Evaluate(ctx, n.Expr, scope)
	if err != nil {
		return Empty(), err
	}

	switch n.Op {
	case TokenNot:
		if err := v.Expect(KindBoolean); err != nil {
			return Empty(), opError(n.Op, err)
		}

		return Bool(!v.Bool()), nil

	default:
		switch v.Kind() {
		case KindInteger:
			if v.Int() == math.MinInt64 {
				return Empty(), ErrOverflow.Errorf("-(%d)", v.Int()).
					With(slog.String("operator", n.Op.String()))
			}

			return Int(-v.Int()), nil
		case KindFloat:
			return Float(-v.Float()), nil
		default:
			return Empty(), opError(n.Op, v.Expect(KindInteger, KindFloat))
		}
	}
}

func opError(op TokenKind, err error) error {
	return WrapError(err).With(slog.String("operator", op.String()))
}

// binary applies an infix operator to two evaluated operands.
//
// Arithmetic and ordering require operands of the same kind, except that an
// Integer mixed with a Float is promoted to Float. "+" also concatenates two
// Strings and appends any value to a List. Equality accepts any pair.
func binary(op TokenKind, a, b Value) (Value, error) {
	switch op {
	case TokenEq:
		return Bool(a.Equal(b)), nil

	case TokenNotEq:
		return Bool(!a.Equal(b)), nil

	case TokenLess, TokenGreater, TokenLessEq, TokenGreaterEq:
		if a.Kind() != b.Kind() && !(a.Kind().IsNumeric() && b.Kind().IsNumeric()) {
			return Empty(), mismatch(op, a, b)
		}

		c := a.Compare(b)

		switch op {
		case TokenLess:
			return Bool(c < 0), nil
		case TokenGreater:
			return Bool(c > 0), nil
		case TokenLessEq:
			return Bool(c <= 0), nil
		default:
			return Bool(c >= 0), nil
		}

	case TokenPlus:
		switch {
		case a.Kind() == KindString && b.Kind() == KindString:
			return String(a.Str() + b.Str()), nil
		case a.Kind() == KindList:
			return a.Append(b), nil
		}

		return arith(op, a, b)

	case TokenMinus, TokenStar, TokenSlash, TokenPercent:
		return arith(op, a, b)

	default:
		return Empty(), mismatch(op, a, b)
	}
}

func arith(op TokenKind, a, b Value) (Value, error) {
	if !a.Kind().IsNumeric() || !b.Kind().IsNumeric() {
		return Empty(), mismatch(op, a, b)
	}

	if a.Kind() == KindInteger && b.Kind() == KindInteger {
		x, y := a.Int(), b.Int()

		switch op {
		case TokenPlus, TokenMinus, TokenStar:
			z, ok := checkedInt(op, x, y)
			if !ok {
				return Empty(), ErrOverflow.Errorf("%d %s %d", x, op, y).
					With(slog.String("operator", op.String()))
			}

			return Int(z), nil
		case TokenSlash, TokenPercent:
			if y == 0 {
				return Empty(), ErrDivideByZero.Errorf("%d %s 0", x, op).
					With(slog.String("operator", op.String()))
			}

			if op == TokenSlash {
				if x == math.MinInt64 && y == -1 {
					return Empty(), ErrOverflow.Errorf("%d %s %d", x, op, y).
						With(slog.String("operator", op.String()))
				}

				return Int(x / y), nil
			}

			return Int(x % y), nil
		}
	}

	x, y := a.Float(), b.Float()

	switch op {
	case TokenPlus:
		return Float(x + y), nil
	case TokenMinus:
		return Float(x - y), nil
	case TokenStar:
		return Float(x * y), nil
	case TokenSlash:
		return Float(x / y), nil
	default:
		return Float(math.Mod(x, y)), nil
	}
}

// checkedInt applies op to x and y, reporting false if the result does not
// fit in an int64.
func checkedInt(op TokenKind, x, y int64) (int64, bool) {
	switch op {
	case TokenPlus:
		z := x + y

		return z, (z > x) == (y > 0)
	case TokenMinus:
		z := x - y

		return z, (z < x) == (y > 0)
	default:
		if x == 0 || y == 0 {
			return 0, true
		}

		z := x * y
		if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return z, false
		}

		return z, z/y == x
	}
}

func mismatch(op TokenKind, a, b Value) error {
	return ErrTypeMismatch.Errorf("operator %s not defined for %s and %s",
		strconv.Quote(op.String()), a.Kind(), b.Kind()).
		With(
			slog.String("operator", op.String()),
			slog.String("lhs", a.Kind().String()),
			slog.String("rhs", b.Kind().String()),
		)
}

func (in *Interpreter) evalArgs(ctx context.Context, args []Node, scope *Scope) ([]Value, error) {
	vals := make([]Value, len(args))

	for i, a := range args {
		v, err := in.Evaluate(ctx, a, scope)
		if err != nil {
			return nil, err
		}

		vals[i] = v
	}

	return vals, nil
}

// evalCall resolves a call target in this order: a Function bound in scope,
// then a registered macro.
func (in *Interpreter) evalCall(ctx context.Context, n *Call, scope *Scope) (Value, error) {
	if n.Name == "" {
		fn, err := in.Evaluate(ctx, n.Callee, scope)
		if err != nil {
			return Empty(), err
		}

		if fn.Kind() != KindFunction {
			return Empty(), ErrTypeMismatch.Errorf("cannot call %s: it is %s",
				n.callee(), fn.Kind())
		}

		args, err := in.evalArgs(ctx, n.Args, scope)
		if err != nil {
			return Empty(), err
		}

		return in.Invoke(ctx, fn, args...)
	}

	bound, isBound := scope.Lookup(n.Name)
	if isBound && bound.Kind() == KindFunction {
		args, err := in.evalArgs(ctx, n.Args, scope)
		if err != nil {
			return Empty(), err
		}

		return in.Invoke(ctx, bound, args...)
	}

	spec, ok := in.cfg.registry.Lookup(n.Name)
	if !ok {
		if isBound {
			return Empty(), ErrTypeMismatch.Errorf("cannot call %s: it is %s",
				n.Name, bound.Kind()).With(slog.String("name", n.Name))
		}

		return Empty(), ErrUnknownMacro.Errorf("%s", n.Name).
			With(slog.String("macro", n.Name))
	}

	args := make([]Value, len(n.Args))

	for i, a := range n.Args {
		if spec.IsDeferred(i) {
			args[i] = FunctionValue(&Block{Stmts: []Node{a}, At: a.Pos()}, scope)

			continue
		}

		v, err := in.Evaluate(ctx, a, scope)
		if err != nil {
			return Empty(), err
		}

		args[i] = v
	}

	in.cfg.logger.TraceContext(ctx, "dispatch",
		slog.String("macro", n.Name),
		slog.Int("args", len(args)),
	)

	return in.cfg.registry.Dispatch(ctx, &Invocation{
		Name:   n.Name,
		Args:   args,
		Scope:  scope,
		Interp: in,
		At:     n.At,
	})
}

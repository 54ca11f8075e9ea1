package lang

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_Scenarios(t *testing.T) {
	t.Run("assignment and sum", func(t *testing.T) {
		assert.Equal(t, Int(3), mustEval(t, "x = 1 + 2; x"))
	})

	t.Run("method get", func(t *testing.T) {
		assert.Equal(t, Int(20), mustEval(t, "(10,20,30):get(1)"))
	})

	t.Run("insert with wrong width leaves table unchanged", func(t *testing.T) {
		scope := NewScope()

		_, err := New().Execute(t.Context(),
			`t = create_table(("n","a"), (("bob",1),("amy",2))); t:insert(("cid",3,"x"))`,
			scope)
		require.ErrorIs(t, err, ErrColumnMismatch)

		tbl, err := scope.Get("t")
		require.NoError(t, err)
		assert.Equal(t, 2, tbl.Table().Len())
	})

	t.Run("async strings", func(t *testing.T) {
		assert.Equal(t, List(Int(2), Int(4)), mustEval(t, `async("1+1", "2+2")`))
	})

	t.Run("string plus integer", func(t *testing.T) {
		_, err := eval(t, `"5" + 1`)
		require.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("stable sort by column", func(t *testing.T) {
		got := mustEval(t,
			`t = create_table(("n","a"), (("amy",2),("bob",1))); t:sort_by("a"):rows`)

		want := List(
			List(String("bob"), Int(1)),
			List(String("amy"), Int(2)),
		)
		assert.True(t, want.Equal(got), "got %s", got)
	})
}

func TestExecute_Operators(t *testing.T) {
	tests := []struct {
		source string
		want   Value
	}{
		{"2 * 3 + 1", Int(7)},
		{"2 * (3 + 1)", Int(8)},
		{"7 / 2", Int(3)},
		{"-7 / 2", Int(-3)},
		{"7 % 3", Int(1)},
		{"7.0 / 2", Float(3.5)},
		{"1 + 2.5", Float(3.5)},
		{"7.5 % 2", Float(1.5)},
		{"-(3)", Int(-3)},
		{"0x1F", Int(31)},
		{`"a" + "b"`, String("ab")},
		{"(1, 2) + 3", List(Int(1), Int(2), Int(3))},
		{"1 < 2", Bool(true)},
		{`"a" < "b"`, Bool(true)},
		{"2 >= 2.0", Bool(true)},
		{"1 == 1.0", Bool(true)},
		{`1 == "1"`, Bool(false)},
		{`1 != "1"`, Bool(true)},
		{"(1, 2) == (1, 2)", Bool(true)},
		{"true && false", Bool(false)},
		{"false || true", Bool(true)},
		{"!true", Bool(false)},
		{"false && 1 / 0 == 1", Bool(false)},
		{"true || 1 / 0 == 1", Bool(true)},
		{"true || 1", Bool(true)},
		{"false && 1", Bool(false)},
		{"9223372036854775807 - 1 + 1", Int(math.MaxInt64)},
		{"-9223372036854775807 - 1", Int(math.MinInt64)},
		{"-9223372036854775808 % -1", Int(0)},
		{"x = 5; x += 2; x", Int(7)},
		{"x = 10; x -= 4; x *= 2; x /= 4; x", Int(3)},
		{`s = "a"; s += "b"; s`, String("ab")},
		{"x = 1", Empty()},
		{"empty", Empty()},
		{"", Empty()},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := mustEval(t, tt.source)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.Equal(t, tt.want.Kind(), got.Kind())
		})
	}

	t.Run("float division by zero", func(t *testing.T) {
		assert.True(t, math.IsInf(mustEval(t, "1.0 / 0").Float(), 1))
	})
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		source string
		want   error
	}{
		{"1 / 0", ErrDivideByZero},
		{"5 % 0", ErrDivideByZero},
		{"1 && true", ErrTypeMismatch},
		{"false || 1", ErrTypeMismatch},
		{"true && 1", ErrTypeMismatch},
		{"9223372036854775807 + 1", ErrOverflow},
		{"-9223372036854775807 - 2", ErrOverflow},
		{"4611686018427387904 * 2", ErrOverflow},
		{"-9223372036854775808 * -1", ErrOverflow},
		{"-9223372036854775808 / -1", ErrOverflow},
		{"x = -9223372036854775808; -x", ErrOverflow},
		{"!1", ErrTypeMismatch},
		{`-"a"`, ErrTypeMismatch},
		{`"a" < 1`, ErrTypeMismatch},
		{`"a" - "b"`, ErrTypeMismatch},
		{"nope", ErrUnknownVariable},
		{"nope(1)", ErrUnknownMacro},
		{"x = 1; x(2)", ErrTypeMismatch},
		{"(1)(2)", ErrTypeMismatch},
		{"f = { 1 }; f(1, 2)", ErrArityMismatch},
		{"n = 1; n.x = 2", ErrTypeMismatch},
		{"x += 1", ErrUnknownVariable},
		{"(1, 2", ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := eval(t, tt.source)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExecute_ErrorPosition(t *testing.T) {
	_, err := eval(t, "x = 1;\ny = x + \"a\"")
	require.ErrorIs(t, err, ErrTypeMismatch)

	var ee *Error
	require.ErrorAs(t, err, &ee)

	pos, ok := ee.Position()
	require.True(t, ok)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 7, pos.Column)
	assert.Equal(t, "+", attr(ee, "operator"))
	assert.Contains(t, err.Error(), "2:7: type mismatch")
}

func TestExecute_ParseFailureRunsNothing(t *testing.T) {
	scope := NewScope()

	_, err := New().Execute(t.Context(), "x = 1; )", scope)
	require.ErrorIs(t, err, ErrParse)

	_, ok := scope.Lookup("x")
	assert.False(t, ok)
}

func TestExecute_StopsAtFirstError(t *testing.T) {
	scope := NewScope()

	_, err := New().Execute(t.Context(), "a = 1; b = nope; c = 3", scope)
	require.ErrorIs(t, err, ErrUnknownVariable)

	_, ok := scope.Lookup("a")
	assert.True(t, ok)

	_, ok = scope.Lookup("c")
	assert.False(t, ok)
}

func TestExecute_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancelCause(t.Context())

	stop := errors.New("stop")
	cancel(stop)

	_, err := New().Execute(ctx, "1; 2", nil)
	require.ErrorIs(t, err, stop)
}

func TestExecute_Functions(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Value
	}{
		{"call", "f = { input + 1 }; f(2)", Int(3)},
		{"no argument", "f = { input }; f()", Empty()},
		{"expression callee", "{ input * 2 }(4)", Int(8)},
		{"last statement wins", "f = { a = input; a * a }; f(3)", Int(9)},
		{"yield", "5 :: input * 2", Int(10)},
		{"yield chain", "2 :: input + 1 :: input * 10", Int(30)},
		{"yield into function", "3 :: { input * input }(input)", Int(9)},
		{"nested yield", `"A" :: (input :: ("B" :: input))`, String("B")},
		{"yield restores outer input", `input = 7; "A" :: (input :: ("B" :: input)); input`, Int(7)},
		{
			"recursion",
			"fact = { if(input <= 1, 1, input * fact(input - 1)) }; fact(5)",
			Int(120),
		},
		{"closure sees later bindings", "x = 1; f = { x }; x = 2; f()", Int(2)},
		{"local writes stay local", "x = 1; f = { x = 5; x }; f(); x", Int(1)},
		{"function as value", "apply = { input.f(input.v) }; apply((f = { input * 3 }, v = 2))", Int(6)},
		{"shadowing a macro", "count = { 42 }; count((1, 2))", Int(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEval(t, tt.source)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestExecute_YieldDoesNotLeak(t *testing.T) {
	_, err := eval(t, `"A" :: (input :: ("B" :: input)); input`)
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestExecute_Maps(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Value
	}{
		{"literal", `m = (a = 1, b = "x"); m.b`, String("x")},
		{"nested literal", `m = (a.b = 1, a.c = 2); m.a.c`, Int(2)},
		{"dotted assignment", "m.a.b = 1; m.a.b", Int(1)},
		{"copy on assignment", "a = (x = 1); b = a; b.x = 2; a.x", Int(1)},
		{"copy keeps new value", "a = (x = 1); b = a; b.x = 2; b.x", Int(2)},
		{"list copy", "a = (1, 2); b = a + 3; a:count", Int(2)},
		{"input path", "(user = (name = \"amy\")) :: input.user.name", String("amy")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEval(t, tt.source)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestExecute_ScopeBindings(t *testing.T) {
	scope := NewScopeFrom(MapOf("base", Int(40)))

	v, err := Execute(t.Context(), "result = base + 2; result", scope)
	require.NoError(t, err)
	assert.Equal(t, Int(42), v)

	result, err := scope.Get("result")
	require.NoError(t, err)
	assert.Equal(t, Int(42), result)
}

func TestInterpreter_Invoke(t *testing.T) {
	in := New()
	scope := NewScope()

	fn, err := in.Execute(t.Context(), "{ input * 2 }", scope)
	require.NoError(t, err)
	require.Equal(t, KindFunction, fn.Kind())

	got, err := in.Invoke(t.Context(), fn, Int(21))
	require.NoError(t, err)
	assert.Equal(t, Int(42), got)

	_, err = in.Invoke(t.Context(), Int(1))
	require.ErrorIs(t, err, ErrTypeMismatch)

	got, err = in.InvokeWith(t.Context(), mustEval(t, "{ input + offset }"), Int(1),
		MapOf("offset", Int(10)))
	require.NoError(t, err)
	assert.Equal(t, Int(11), got)
}

func TestInterpreter_ParseFile(t *testing.T) {
	in := New()

	_, err := in.ParseFile(t.Context(), "does/not/exist.whale")
	require.ErrorIs(t, err, ErrReadInput)
}

func TestExecute_CallDepth(t *testing.T) {
	_, err := eval(t, "f = { f() }; f()")
	require.ErrorIs(t, err, ErrCallDepth)
}

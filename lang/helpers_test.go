package lang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// attr returns the string form of the named attribute of err, or "".
func attr(err *Error, key string) string {
	for _, a := range err.Attrs() {
		if a.Key == key {
			return a.Value.String()
		}
	}

	return ""
}

// eval runs source in a fresh scope with the default interpreter.
func eval(t *testing.T, source string) (Value, error) {
	t.Helper()

	return New().Execute(t.Context(), source, nil)
}

// mustEval is like eval but fails the test on error.
func mustEval(t *testing.T, source string) Value {
	t.Helper()

	v, err := eval(t, source)
	require.NoError(t, err, "source: %s", source)

	return v
}

// registryWith returns a frozen registry holding the core macros and specs.
func registryWith(t *testing.T, specs ...Spec) *Registry {
	t.Helper()

	r := NewRegistry()
	require.NoError(t, r.Register(specs...))

	return r.Freeze()
}

// macro builds a variadic spec around fn.
func macro(name string, fn func(ctx context.Context, c *Invocation) (Value, error)) Spec {
	return Spec{Name: name, Group: "test", MaxArgs: Variadic, Macro: fn}
}

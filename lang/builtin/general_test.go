package builtin

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/whale/lang"
)

func TestOutput(t *testing.T) {
	h := newHarness()

	v := h.mustEval(t, `output("hi", 1, (1, "a"))`)
	assert.True(t, v.IsEmpty())
	assert.Equal(t, "hi 1 (1, \"a\")\n", h.stdout.String())

	h.stdout.Reset()
	h.mustEval(t, `output(create_table(("name",), (("amy",),)))`)
	assert.Contains(t, h.stdout.String(), "name")
	assert.Contains(t, h.stdout.String(), "amy")
}

func TestWait(t *testing.T) {
	h := newHarness()

	assert.True(t, h.mustEval(t, "wait(0)").IsEmpty())
	assert.True(t, h.mustEval(t, "wait(0.001)").IsEmpty())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	_, err := h.in.Execute(ctx, "wait(60)", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRepeat(t *testing.T) {
	h := newHarness()

	assert.True(t, lang.List(lang.Int(0), lang.Int(2), lang.Int(4)).Equal(h.mustEval(t, "repeat(3, index * 2)")))
	assert.True(t, lang.List(lang.Int(0), lang.Int(1)).Equal(h.mustEval(t, "repeat(2, { index })")))
	assert.Equal(t, 0, h.mustEval(t, "repeat(0, 1 / 0)").Len())

	_, err := h.eval(t, "repeat(2, nope)")
	require.ErrorIs(t, err, lang.ErrUnknownVariable)
}

func TestRun(t *testing.T) {
	h := newHarness()

	script := filepath.Join(t.TempDir(), "inc.whale")
	require.NoError(t, os.WriteFile(script, []byte("x = base + 1; x"), 0o600))

	assert.Equal(t, lang.Int(42), h.mustEval(t, "base = 41; run("+strconv.Quote(script)+")"))

	_, err := h.eval(t, "base = 1; run("+strconv.Quote(script)+"); x")
	require.ErrorIs(t, err, lang.ErrUnknownVariable)

	_, err = h.eval(t, `run("does/not/exist.whale")`)
	require.ErrorIs(t, err, lang.ErrReadInput)
}

func TestExpr(t *testing.T) {
	h := newHarness()

	tests := []struct {
		source string
		want   lang.Value
	}{
		{`expr("a + b", (a = 1, b = 2))`, lang.Int(3)},
		{`expr("name + \"!\"", (name = "amy"))`, lang.String("amy!")},
		{`expr("[1, 2]")`, lang.List(lang.Int(1), lang.Int(2))},
		{`expr("env(\"HOME\")")`, lang.String("/home/whale")},
		{`expr("shell")`, lang.String("/bin/fish")},
		{`expr("len(xs) > 1", (xs = (1, 2)))`, lang.Bool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := h.mustEval(t, tt.source)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	if _, ok := os.LookupEnv("GOHOSTOS"); !ok {
		assert.Equal(t, lang.String(runtime.GOOS), h.mustEval(t, `expr("platform.os")`))
	}

	_, err := h.eval(t, `expr("1 +")`)
	require.ErrorIs(t, err, lang.ErrExternal)
}

package lang

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sleepy returns its second argument after sleeping for the first, in
// milliseconds.
func sleepy() Spec {
	return macro("sleep_ms", func(ctx context.Context, c *Invocation) (Value, error) {
		select {
		case <-time.After(time.Duration(c.Arg(0).Int()) * time.Millisecond):
			return c.Arg(1), nil
		case <-ctx.Done():
			return Empty(), context.Cause(ctx)
		}
	})
}

func TestAsync_Order(t *testing.T) {
	in := New(WithRegistry(registryWith(t, sleepy())))

	v, err := in.Execute(t.Context(),
		`async(sleep_ms(40, "slow"), sleep_ms(0, "fast"), sleep_ms(20, "mid"))`, nil)
	require.NoError(t, err)
	assert.True(t, List(String("slow"), String("fast"), String("mid")).Equal(v), "got %s", v)
}

func TestAsync_FailureIsolation(t *testing.T) {
	v := mustEval(t, `async("nope", "1", "(1,")`)
	require.Equal(t, 3, v.Len())

	first, _ := v.Index(0)
	assert.Equal(t, KindString, first.Kind())
	assert.Contains(t, first.Str(), "unknown variable")

	second, _ := v.Index(1)
	assert.Equal(t, Int(1), second)

	third, _ := v.Index(2)
	assert.Contains(t, third.Str(), "parse error")
}

func TestAsync_Snapshots(t *testing.T) {
	scope := NewScope()

	v, err := New().Execute(t.Context(),
		`x = 1; r = async("x = 2; x", "x", { x + 10 }); x`, scope)
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)

	r, err := scope.Get("r")
	require.NoError(t, err)
	assert.True(t, List(Int(2), Int(1), Int(11)).Equal(r), "got %s", r)
}

func TestAsync_Limit(t *testing.T) {
	var active, peak atomic.Int32

	track := macro("track", func(context.Context, *Invocation) (Value, error) {
		n := active.Add(1)
		defer active.Add(-1)

		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)

		return Int(int64(n)), nil
	})

	in := New(WithRegistry(registryWith(t, track)), WithAsyncLimit(1))

	v, err := in.Execute(t.Context(), "async(track(), track(), track(), track())", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Len())
	assert.Equal(t, int32(1), peak.Load())
}

func TestAsync_Outcomes(t *testing.T) {
	prog, err := Parse(t.Context(), `1; "2 * 2"; nope`)
	require.NoError(t, err)

	out := New().Async(t.Context(), prog.Stmts, NewScope())
	require.Len(t, out, 3)

	seen := map[string]bool{}

	for _, o := range out {
		assert.True(t, strings.HasPrefix(o.ID, "task_"), o.ID)
		assert.False(t, seen[o.ID], "duplicate task ID %s", o.ID)
		seen[o.ID] = true
	}

	assert.Equal(t, Int(1), out[0].Value)
	assert.Equal(t, Int(4), out[1].Value)
	require.ErrorIs(t, out[2].Err, ErrUnknownVariable)
}

func TestAsync_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancelCause(t.Context())

	stop := errors.New("stop")
	in := New(WithRegistry(registryWith(t,
		sleepy(),
		macro("cancel", func(context.Context, *Invocation) (Value, error) {
			cancel(stop)

			return Empty(), nil
		}),
	)))

	_, err := in.Execute(ctx, `async(cancel(), sleep_ms(10000, 1))`, nil)
	require.ErrorIs(t, err, stop)
}

func TestAsync_Panic(t *testing.T) {
	in := New(WithRegistry(registryWith(t,
		macro("explode", func(context.Context, *Invocation) (Value, error) {
			panic("kaboom")
		}),
	)))

	v, err := in.Execute(t.Context(), "async(explode(), 2)", nil)
	require.NoError(t, err)

	first, _ := v.Index(0)
	assert.Contains(t, first.Str(), "panic: kaboom")

	second, _ := v.Index(1)
	assert.Equal(t, Int(2), second)
}

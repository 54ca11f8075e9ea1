package lang

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_Shadowing(t *testing.T) {
	root := NewScope()
	root.Bind("x", Int(1))
	root.Bind("y", Int(2))

	child := root.Child()
	child.Bind("x", Int(10))

	got, err := child.Get("x")
	require.NoError(t, err)
	assert.Equal(t, Int(10), got)

	got, err = child.Get("y")
	require.NoError(t, err)
	assert.Equal(t, Int(2), got)

	got, err = root.Get("x")
	require.NoError(t, err)
	assert.Equal(t, Int(1), got)

	assert.Equal(t, []string{"x", "y"}, child.Keys())
	assert.Same(t, root, child.Parent())
}

func TestScope_Unknown(t *testing.T) {
	_, err := NewScope().Get("missing.name")
	require.ErrorIs(t, err, ErrUnknownVariable)

	var ee *Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "missing.name", attr(ee, "name"))
}

func TestScope_DottedSet(t *testing.T) {
	root := NewScope()
	require.NoError(t, root.Set("cfg.net.port", Int(80)))

	child := root.Child()
	require.NoError(t, child.Set("cfg.net.host", String("example.org")))

	// The child holds an updated copy; the parent's map is unchanged.
	_, ok := root.Lookup("cfg.net.host")
	assert.False(t, ok)

	port, ok := child.Lookup("cfg.net.port")
	require.True(t, ok)
	assert.Equal(t, Int(80), port)

	host, ok := child.Lookup("cfg.net.host")
	require.True(t, ok)
	assert.Equal(t, String("example.org"), host)

	root.Bind("n", Int(1))
	err := root.Set("n.x", Int(2))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestScope_Snapshot(t *testing.T) {
	root := NewScope()
	root.Bind("a", Int(1))
	root.Bind("b", Int(1))

	child := root.Child()
	child.Bind("b", Int(2))

	snap := child.Snapshot()
	assert.Nil(t, snap.Parent())

	b, err := snap.Get("b")
	require.NoError(t, err)
	assert.Equal(t, Int(2), b)

	root.Bind("a", Int(9))

	a, err := snap.Get("a")
	require.NoError(t, err)
	assert.Equal(t, Int(1), a)
}

func TestScope_Unbind(t *testing.T) {
	s := NewScopeFrom(MapOf("a", Int(1)))

	assert.True(t, s.Unbind("a"))
	assert.False(t, s.Unbind("a"))

	_, ok := s.Lookup("a")
	assert.False(t, ok)
}

func TestScope_ConcurrentReaders(t *testing.T) {
	s := NewScope()
	s.Bind("x", Int(1))

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			for range 100 {
				_, _ = s.Get("x")
				_ = s.Snapshot()
			}
		})
	}

	wg.Wait()
}

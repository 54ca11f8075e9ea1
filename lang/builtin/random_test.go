package builtin

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/whale/lang"
)

func TestRandom(t *testing.T) {
	h := newHarness()

	for range 50 {
		n := h.mustEval(t, "random_integer(5)").Int()
		assert.True(t, n >= 0 && n < 5, "out of range: %d", n)

		n = h.mustEval(t, "random_integer(-2, 2)").Int()
		assert.True(t, n >= -2 && n <= 2, "out of range: %d", n)

		f := h.mustEval(t, "random_float()").Float()
		assert.True(t, f >= 0 && f < 1, "out of range: %g", f)
	}

	assert.Equal(t, lang.Int(3), h.mustEval(t, "random_integer(3, 3)"))
	assert.Equal(t, lang.KindInteger, h.mustEval(t, "random_integer()").Kind())
	assert.Equal(t, lang.KindBoolean, h.mustEval(t, "random_boolean()").Kind())
}

func TestRandomString(t *testing.T) {
	h := newHarness()

	s := h.mustEval(t, "random_string()").Str()
	assert.Len(t, s, 10)

	for _, r := range s {
		assert.Contains(t, alphanumeric, string(r))
	}

	assert.Len(t, h.mustEval(t, "random_string(4)").Str(), 4)
	assert.Equal(t, lang.String(""), h.mustEval(t, "random_string(0)"))

	_, err := h.eval(t, "random_string(-1)")
	require.ErrorIs(t, err, lang.ErrIndexOutOfRange)
}

func TestRandomUUID(t *testing.T) {
	h := newHarness()

	a := h.mustEval(t, "random_uuid()").Str()
	b := h.mustEval(t, "random_uuid()").Str()
	assert.NotEqual(t, a, b)

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), id.Version())
}

func TestRandom_Errors(t *testing.T) {
	h := newHarness()

	for _, src := range []string{"random_integer(0)", "random_integer(-1)", "random_integer(5, 1)"} {
		_, err := h.eval(t, src)
		require.ErrorIs(t, err, lang.ErrIndexOutOfRange, src)
	}

	_, err := h.eval(t, "random_integer(1.5)")
	require.ErrorIs(t, err, lang.ErrTypeMismatch)
}

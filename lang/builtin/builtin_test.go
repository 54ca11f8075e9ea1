package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/whale/lang"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	for _, s := range Specs() {
		got, ok := r.Lookup(s.Name)
		require.True(t, ok, s.Name)
		assert.Equal(t, s.Group, got.Group)
		assert.NotEmpty(t, s.Description, s.Name)
		assert.NotNil(t, s.Macro, s.Name)
	}

	for _, name := range []string{"count", "if", "select_where", "create_table"} {
		_, ok := r.Lookup(name)
		assert.True(t, ok, "core macro %q", name)
	}

	require.ErrorIs(t, r.Register(lang.Spec{Name: "late"}), lang.ErrRegistryFrozen)
}

func TestSpecs_Groups(t *testing.T) {
	groups := map[string]bool{}
	for _, s := range Specs() {
		groups[s.Group] = true
	}

	for _, g := range []string{
		groupGeneral, groupData, groupFilesystem, groupCommand, groupNetwork,
		groupPackages, groupDisk, groupSystem, groupRandom, groupTime, groupGit,
	} {
		assert.True(t, groups[g], "no macros in group %q", g)
	}
}

func TestWords(t *testing.T) {
	got, err := words(lang.String("  a b\tc "))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	got, err = words(lang.List(lang.String("a b"), lang.String("c")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a b", "c"}, got)

	_, err = words(lang.List(lang.Int(1)))
	require.ErrorIs(t, err, lang.ErrTypeMismatch)
}

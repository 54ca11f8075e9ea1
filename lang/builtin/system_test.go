package builtin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/whale/lang"
)

func TestEnv(t *testing.T) {
	h := newHarness()

	assert.Equal(t, lang.String("/home/whale"), h.mustEval(t, `env("HOME")`))
	assert.Equal(t, lang.String(""), h.mustEval(t, `env("EMPTY")`))
	assert.True(t, h.mustEval(t, `env("NOPE")`).IsEmpty())

	all := h.mustEval(t, "env()")
	require.Equal(t, lang.KindMap, all.Kind())
	assert.Equal(t, []string{"EMPTY", "HOME", "SHELL"}, all.Map().Keys())

	_, err := h.eval(t, "env(1)")
	require.ErrorIs(t, err, lang.ErrTypeMismatch)
}

func TestSystemInfo(t *testing.T) {
	h := newHarness()

	info := h.mustEval(t, "system_info()")
	require.Equal(t, lang.KindMap, info.Kind())

	for _, key := range []string{"os", "arch", "target", "hostname", "user", "shell", "cwd", "cpus"} {
		_, ok := info.Map().Get(key)
		assert.True(t, ok, "missing %q", key)
	}

	shell, _ := info.Map().Get("shell")
	assert.Equal(t, lang.String("/bin/fish"), shell)

	cpus, _ := info.Map().Get("cpus")
	assert.Positive(t, cpus.Int())

	assert.Equal(t, lang.KindInteger, h.mustEval(t, "cpu_speed()").Kind())
}

func TestTarget(t *testing.T) {
	tests := []struct {
		os, arch string
		want     osArch
	}{
		{"linux", "amd64", osArch{"linux", "x86_64"}},
		{"linux", "386", osArch{"linux", "i386"}},
		{"linux", "arm64", osArch{"linux", "aarch64"}},
		{"darwin", "arm64", osArch{"darwin", "arm64"}},
		{"linux", "mipsle", osArch{"linux", "mipsel"}},
	}

	for _, tt := range tests {
		t.Run(tt.os+"/"+tt.arch, func(t *testing.T) {
			t.Setenv("GOHOSTOS", tt.os)
			t.Setenv("GOHOSTARCH", tt.arch)

			assert.Equal(t, tt.want, target())
		})
	}
}

func TestPathPrefix(t *testing.T) {
	h := newHarness()

	sep := string(os.PathListSeparator)

	got := h.mustEval(t, `path_prefix("/usr/bin`+sep+`/bin", "/opt/bin")`)
	require.Equal(t, lang.KindString, got.Kind())
	assert.Contains(t, got.Str(), "/opt/bin")
	assert.Contains(t, got.Str(), "/usr/bin")

	got = h.mustEval(t, `path_prefix_if("/usr/bin", { input != "" }, "/opt/bin")`)
	assert.Contains(t, got.Str(), "/opt/bin")

	_, err := h.eval(t, `path_prefix_if("/usr/bin", 1, "/opt/bin")`)
	require.ErrorIs(t, err, lang.ErrTypeMismatch)
}

func TestPaths(t *testing.T) {
	h := newHarness()

	assert.Equal(t, lang.String(filepath.Join("a", "b", "c")), h.mustEval(t, `path_join("a", "b", "c")`))
	assert.Equal(t, lang.String(filepath.Join("b", "c")), h.mustEval(t, `path_rel("/a", "/a/b/c")`))

	abs, err := filepath.Abs("x")
	require.NoError(t, err)
	assert.Equal(t, lang.String(abs), h.mustEval(t, `path_abs("x")`))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, lang.String(cwd), h.mustEval(t, "cwd()"))
}

func TestEnvironMap(t *testing.T) {
	got := environMap([]string{"A=1", "B=x=y", "junk", "C="})
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "C": ""}, got)
}

package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/whale/lang"
	"github.com/ardnew/whale/lang/builtin"
)

// harness captures the streams of a command run.
type harness struct {
	out, err bytes.Buffer
}

// context returns a context carrying the harness streams, stdin reading from
// in, and an interpreter with every builtin macro.
func (h *harness) context(t *testing.T, in string) context.Context {
	t.Helper()

	ctx := WithStreams(t.Context(), Streams{
		In:  strings.NewReader(in),
		Out: &h.out,
		Err: &h.err,
	})

	return WithInterpreter(ctx, lang.New(
		lang.WithRegistry(builtin.NewRegistry(builtin.WithOutput(&h.out))),
	))
}

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	return string(data)
}

package builtin

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardnew/whale/lang"
)

// call records one invocation of a fake runner.
type call struct {
	name string
	args []string
}

func (c call) String() string { return strings.Join(append([]string{c.name}, c.args...), " ") }

// fakeRunner records commands instead of running them.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	output string
	err    error
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, call{name: name, args: args})

	return r.output, r.err
}

func (r *fakeRunner) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.String()
	}

	return out
}

// fakeFetcher serves fixed bodies by URL.
type fakeFetcher map[string]string

func (f fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := f[url]
	if !ok {
		return nil, lang.ErrExternal.Errorf("GET %s: 404 Not Found", url)
	}

	return []byte(body), nil
}

// harness runs scripts against a registry with every builtin macro and
// fake collaborators.
type harness struct {
	runner  *fakeRunner
	fetcher fakeFetcher
	stdout  *bytes.Buffer
	in      *lang.Interpreter
}

func newHarness(opts ...Option) *harness {
	h := &harness{
		runner:  &fakeRunner{},
		fetcher: fakeFetcher{},
		stdout:  &bytes.Buffer{},
	}

	opts = append([]Option{
		WithRunner(h.runner),
		WithFetcher(h.fetcher),
		WithOutput(h.stdout),
		WithEnviron([]string{"HOME=/home/whale", "SHELL=/bin/fish", "EMPTY="}),
	}, opts...)

	h.in = lang.New(lang.WithRegistry(NewRegistry(opts...)), lang.WithCache(false))

	return h
}

func (h *harness) eval(t *testing.T, source string) (lang.Value, error) {
	t.Helper()

	return h.in.Execute(t.Context(), source, nil)
}

func (h *harness) mustEval(t *testing.T, source string) lang.Value {
	t.Helper()

	v, err := h.eval(t, source)
	require.NoError(t, err, "source: %s", source)

	return v
}

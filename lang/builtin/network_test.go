package builtin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/whale/lang"
)

func TestDownload(t *testing.T) {
	h := newHarness()
	h.fetcher["https://example.org/motd"] = "hello"

	assert.Equal(t, lang.String("hello"), h.mustEval(t, `download("https://example.org/motd")`))

	_, err := h.eval(t, `download("https://example.org/nope")`)
	require.ErrorIs(t, err, lang.ErrExternal)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok" {
			http.NotFound(w, r)

			return
		}

		_, _ = w.Write([]byte("body"))
	}))
	defer srv.Close()

	f := HTTPFetcher{Client: srv.Client()}

	got, err := f.Fetch(t.Context(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, "body", string(got))

	_, err = f.Fetch(t.Context(), srv.URL+"/missing")
	require.ErrorIs(t, err, lang.ErrExternal)
	assert.Contains(t, err.Error(), "404")

	_, err = HTTPFetcher{}.Fetch(t.Context(), "://bad")
	require.ErrorIs(t, err, lang.ErrExternal)
}

package builtin

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/ardnew/whale/lang"
)

// Fetcher retrieves the content at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches with an HTTP GET. A nil Client means
// [http.DefaultClient].
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements [Fetcher]. A response outside the 2xx range fails with
// [lang.ErrExternal].
func (f HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, external(err, slog.String("url", url))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, external(err, slog.String("url", url))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, external(err, slog.String("url", url))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, lang.ErrExternal.Errorf("GET %s: %s", url, resp.Status).
			With(slog.String("url", url), slog.Int("status", resp.StatusCode))
	}

	return body, nil
}

func (c *config) networkSpecs() []lang.Spec {
	return []lang.Spec{
		{
			Name:        "download",
			Group:       groupNetwork,
			Description: "Fetch a network resource and return its body as a string.",
			Params:      []string{"url"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{stringKind},
			Macro: func(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
				url := call.Arg(0).Str()

				body, err := c.fetcher.Fetch(ctx, url)
				if err != nil {
					return lang.Empty(), err
				}

				call.Logger().DebugContext(ctx, "downloaded",
					slog.String("url", url),
					slog.Int("bytes", len(body)),
				)

				return lang.String(string(body)), nil
			},
		},
	}
}

package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/whale/log"
)

// programCache stores parsed programs keyed by the xxh3 hash of their
// source. Programs are never modified after parsing, so one can be shared
// by any number of concurrent runs.
var programCache sync.Map

// entry tracks the parse of a single source.
type entry struct {
	once   sync.Once
	source string
	prog   *Program
	err    error
}

// parseCached parses source once per distinct content.
func parseCached(ctx context.Context, source string, logger log.Logger) (*Program, error) {
	hash := xxh3.HashString(source)

	value, hit := programCache.LoadOrStore(hash, &entry{source: source})

	e, _ := value.(*entry)

	// A hash collision falls back to an uncached parse.
	if e == nil || e.source != source {
		return Parse(ctx, source, WithLogger(logger))
	}

	logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	e.once.Do(func() {
		e.prog, e.err = Parse(ctx, source, WithLogger(logger))
	})

	return e.prog, e.err
}

// readSource reads all of r through an asynchronous read-ahead buffer.
func readSource(ctx context.Context, r io.Reader, logger log.Logger) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err).With(slog.String("source", "reader"))
	}

	logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return string(data), nil
}

// ParseReader parses a program from r, using the parse cache.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Program, error) {
	cfg := makeConfig(opts...)

	source, err := readSource(ctx, r, cfg.logger)
	if err != nil {
		return nil, err
	}

	if !cfg.cache {
		return Parse(ctx, source, opts...)
	}

	return parseCached(ctx, source, cfg.logger)
}

// ClearCache removes all cached programs.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	programCache.Clear()
}

package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/whale/log"
)

func Example_basic() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"), log.WithPretty(false))
	logger.Info("script finished", slog.Int("statements", 3))

	// Output:
	// level=INFO msg="script finished" statements=3
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Debug("parsed program")
	logger.Info("executing program")
	logger.Warn("async branch failed", slog.Int("branch", 1))

	// Output:
	// level=WARN msg="async branch failed" branch=1
}

func Example_trace() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout("none"),
		log.WithFormat(log.FormatJSON),
		log.WithPretty(false))

	logger.Trace("dispatch", slog.String("macro", "count"))

	// Output:
	// {"level":"TRACE","msg":"dispatch","macro":"count"}
}

func Example_withAttributes() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"), log.WithPretty(false))
	logger = logger.With(slog.String("script", "setup.whale"))

	logger.Info("watch started", slog.String("path", "/etc/hosts"))

	// Output:
	// level=INFO msg="watch started" script=setup.whale path=/etc/hosts
}

func Example_withContext() {
	type scriptKey struct{}

	ctx := context.WithValue(context.Background(), scriptKey{}, "setup.whale")

	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))

	logger.InfoContext(ctx, "executing program")
	logger.DebugContext(ctx, "statement", slog.Int("index", 0))
}

// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("script finished", slog.Int("statements", 3))
//	logger.Error("macro failed", log.Err(err))
//
// # Configuration
//
// Configure the logger using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The package-level functions ([Info], [Debug], ...) write through a shared
// default logger that is reconfigured with [Config].
//
// # Context-Aware Logging
//
// Each logging level has both a context-aware and context-unaware variant.
// Context-unaware functions internally call their context-aware counterparts
// using [DefaultContextProvider], which returns [context.TODO] by default.
//
// # Supported Levels
//
// The package supports five log levels: [LevelTrace], [LevelDebug],
// [LevelInfo], [LevelWarn], and [LevelError]. Messages below the configured
// level are discarded.
//
// # Output Formats
//
// Two output formats are supported: [FormatText] (default) and [FormatJSON].
// With [WithPretty] enabled, text records are rendered by tint and JSON
// records are indented. Color is used only when writing to a terminal.
package log

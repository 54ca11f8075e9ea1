// Package cli contains the command line interface for whale.
//
// # Usage
//
//	whale [flags] [run] [file ...]
//	whale eval 'x = 2; x * 21'
//	whale fmt --format yaml script.whale
//	whale macros --group filesystem
//	whale repl
//	whale init
//
// Run is the default command, so "whale script.whale" runs a script and
// "whale" alone reads one from stdin.
//
// # Configuration
//
// Flag defaults are read from two files in the user configuration directory
// (for example ~/.config/whale on Linux):
//
//   - config.whale, a whale script whose top-level bindings name flags
//   - config.whale.json, a JSON object keyed by flag name
//
// For example:
//
//	log_level = "debug";
//	log.pretty = false;
//	jobs = 4;
//
// Nested Maps are joined with underscores, so log.pretty resolves
// --log-pretty. The script runs with only the core macros available.
// Command-line flags override both files. "whale init" writes config.whale
// from the current flag values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, ...)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o whale .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/whale/pprof)
package cli

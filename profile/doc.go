// Package profile provides optional runtime profiling for whale.
//
// Profiling is backed by [github.com/pkg/profile] and is compiled in only
// with the "pprof" build tag:
//
//	go build -tags pprof -o whale .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty, so the
// CLI can call [Profiler.Start] unconditionally.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution tracing
//
// # Usage
//
//	stop := profile.Profiler{Mode: "cpu", Path: dir, Quiet: true}.Start()
//	defer stop.Stop()
//
// Profiles are written to Path with names matching the mode (cpu.pprof,
// mem.pprof, ...). Analyze them with go tool pprof:
//
//	go tool pprof -http=: ~/.cache/whale/pprof/cpu.pprof
//
// Profiling a long-running script, for example one blocked in watch, is
// easiest with the HTTP handlers that the pprof build also registers under
// /debug/pprof/.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

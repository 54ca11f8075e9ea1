//go:build !pprof

package profile

// Modes returns the supported profiling modes, which are none without the
// pprof build tag.
func Modes() []string { return nil }

func start(Profiler) Stopper { return ignore{} }

package profile

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Path  string // output directory; empty means the working directory
	Quiet bool   // suppress the start and stop messages
}

// Start begins profiling and returns the session.
//
// An empty or unknown Mode, or a build without the pprof tag, returns a
// no-op. Both Start and Stop are always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}

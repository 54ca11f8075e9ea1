//go:build pprof

package profile

import "github.com/pkg/profile"

// option adds settings to the list passed to [profile.Start].
type option func(control) control

// control accumulates the settings of one profiling session.
type control struct {
	settings []func(*profile.Profile)
}

func apply(c control, opts ...option) control {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func withMode(m string) option {
	return func(c control) control {
		if fn, ok := modes[m]; ok {
			c.settings = append(c.settings, fn)
		}

		return c
	}
}

func withPath(p string) option {
	return func(c control) control {
		if p != "" {
			c.settings = append(c.settings, profile.ProfilePath(p))
		}

		return c
	}
}

func withQuiet(v bool) option {
	return func(c control) control {
		if v {
			c.settings = append(c.settings, profile.Quiet)
		}

		return c
	}
}

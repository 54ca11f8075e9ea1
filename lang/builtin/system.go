package builtin

import (
	"bufio"
	"context"
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/ardnew/mung"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/ardnew/whale/lang"
)

func (c *config) systemSpecs() []lang.Spec {
	return []lang.Spec{
		{
			Name:        "system_info",
			Group:       groupSystem,
			Description: "Describe the host: operating system, architecture, target triple, user, shell, processors and memory.",
			Macro:       c.systemInfo,
		},
		{
			Name:        "cpu_speed",
			Group:       groupSystem,
			Description: "Return the processor speed in megahertz, or 0 if it is unknown.",
			Macro:       cpuSpeed,
		},
		{
			Name:        "env",
			Group:       groupSystem,
			Description: "Return the named environment variable (empty if unset), or a map of all of them.",
			Params:      []string{"name"},
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{stringKind},
			Macro:       c.env,
		},
		{
			Name:        "path_prefix",
			Group:       groupSystem,
			Description: "Prepend directories to a PATH-like list, dropping duplicates.",
			Params:      []string{"list", "dirs"},
			MinArgs:     1,
			MaxArgs:     lang.Variadic,
			Kinds:       [][]lang.Kind{stringKind, stringKind},
			Macro:       pathPrefix,
		},
		{
			Name:        "path_prefix_if",
			Group:       groupSystem,
			Description: "Like path_prefix, keeping only the entries for which the predicate function is truthy.",
			Params:      []string{"list", "predicate", "dirs"},
			MinArgs:     2,
			MaxArgs:     lang.Variadic,
			Kinds: [][]lang.Kind{
				stringKind,
				{lang.KindFunction},
				stringKind,
			},
			Macro: pathPrefixIf,
		},
		{
			Name:        "cwd",
			Group:       groupSystem,
			Description: "Return the working directory.",
			Macro: func(context.Context, *lang.Invocation) (lang.Value, error) {
				return lang.String(workingDir()), nil
			},
		},
		{
			Name:        "path_abs",
			Group:       groupSystem,
			Description: "Return the absolute form of a path.",
			Params:      []string{"path"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{stringKind},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				return lang.String(pathAbs(call.Arg(0).Str())), nil
			},
		},
		{
			Name:        "path_join",
			Group:       groupSystem,
			Description: "Join path elements with the separator of the host.",
			Params:      []string{"elems"},
			MinArgs:     1,
			MaxArgs:     lang.Variadic,
			Kinds:       [][]lang.Kind{stringKind},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				return lang.String(filepath.Join(argStrings(call.Args)...)), nil
			},
		},
		{
			Name:        "path_rel",
			Group:       groupSystem,
			Description: "Return the second path relative to the first.",
			Params:      []string{"base", "target"},
			MinArgs:     2,
			MaxArgs:     2,
			Kinds:       [][]lang.Kind{stringKind, stringKind},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				return lang.String(pathRel(call.Arg(0).Str(), call.Arg(1).Str())), nil
			},
		},
	}
}

func (c *config) systemInfo(ctx context.Context, _ *lang.Invocation) (lang.Value, error) {
	goTarget, gnuTarget := platform(), target()

	info := lang.MapOf(
		"os", lang.String(goTarget.OS),
		"arch", lang.String(goTarget.Arch),
		"target", lang.String(gnuTarget.Arch+"-"+gnuTarget.OS),
		"hostname", lang.String(hostname()),
		"user", lang.String(username()),
		"shell", lang.String(c.shell()),
		"cwd", lang.String(workingDir()),
		"cpus", lang.Int(int64(runtime.NumCPU())),
	)

	// Host details are best effort; some platforms report only a subset.
	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Set("platform", lang.String(h.Platform))
		info.Set("platform_version", lang.String(h.PlatformVersion))
		info.Set("kernel", lang.String(h.KernelVersion))
		info.Set("uptime", lang.Int(int64(min(h.Uptime, uint64(1<<62)))))
	}

	if m, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.Set("memory", lang.Int(int64(min(m.Total, uint64(1<<62)))))
	}

	return lang.MapValue(info), nil
}

func cpuSpeed(ctx context.Context, _ *lang.Invocation) (lang.Value, error) {
	stats, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return lang.Int(0), nil //nolint:nilerr // unknown speed
	}

	var mhz float64
	for _, s := range stats {
		mhz = max(mhz, s.Mhz)
	}

	return lang.Int(int64(mhz)), nil
}

func (c *config) env(_ context.Context, call *lang.Invocation) (lang.Value, error) {
	vars := environMap(c.environ)

	if len(call.Args) == 0 {
		m := lang.NewMap()
		for _, k := range slices.Sorted(maps.Keys(vars)) {
			m.Set(k, lang.String(vars[k]))
		}

		return lang.MapValue(m), nil
	}

	v, ok := vars[call.Arg(0).Str()]
	if !ok {
		return lang.Empty(), nil
	}

	return lang.String(v), nil
}

func pathPrefix(_ context.Context, call *lang.Invocation) (lang.Value, error) {
	return lang.String(mungPrefix(call.Arg(0).Str(), argStrings(call.Args[1:])...)), nil
}

func pathPrefixIf(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
	var failed error

	keep := func(item string) bool {
		if failed != nil {
			return false
		}

		v, err := call.Call(ctx, call.Arg(1), lang.String(item))
		if err != nil {
			failed = err

			return false
		}

		return v.Truthy()
	}

	out := mungPrefixIf(call.Arg(0).Str(), keep, argStrings(call.Args[2:])...)
	if failed != nil {
		return lang.Empty(), failed
	}

	return lang.String(out), nil
}

func argStrings(args []lang.Value) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.Str()
	}

	return out
}

// osArch identifies a target operating system and instruction set
// architecture. The naming convention depends on where it came from.
type osArch struct {
	OS   string
	Arch string
}

// target returns the host using GNU GCC/LLVM naming conventions.
func target() osArch {
	t := platform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		arm, ok := os.LookupEnv("GOARM")
		if ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch strings.TrimSpace(arm) {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// platform returns the host using Go conventions.
func platform() osArch {
	o, ok := os.LookupEnv("GOHOSTOS")
	if !ok {
		o = runtime.GOOS
	}

	a, ok := os.LookupEnv("GOHOSTARCH")
	if !ok {
		a = runtime.GOARCH
	}

	return osArch{OS: o, Arch: a}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}

	return name
}

func username() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}

	return u.Username
}

// shell returns $SHELL, falling back to the login shell in /etc/passwd.
func (c *config) shell() string {
	if sh, ok := environMap(c.environ)["SHELL"]; ok {
		return sh
	}

	name := username()
	if name == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		e := strings.Split(s.Text(), ":")
		if len(e) > 6 && e[0] == name {
			return e[6]
		}
	}

	return ""
}

func workingDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return cwd
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return filepath.Join(from, to)
	}

	return p
}

func mungPrefix(list string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(list string, keep func(string) bool, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(keep),
	).String()
}

// environMap converts "KEY=VALUE" entries to a map. Entries without "=" are
// skipped.
func environMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))

	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if ok {
			out[key] = value
		}
	}

	return out
}

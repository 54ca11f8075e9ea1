// Package builtin provides the macros that reach outside the interpreter:
// files, processes, the network, the host system, time, randomness, and
// data formats.
//
// Every external effect goes through a collaborator ([Runner], [Fetcher],
// the output writer) that can be replaced with [Option]s, so scripts can be
// tested without touching the host.
package builtin

import (
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/ardnew/whale/lang"
)

// Macro groups.
const (
	groupGeneral    = "general"
	groupData       = "data"
	groupFilesystem = "filesystem"
	groupCommand    = "command"
	groupNetwork    = "network"
	groupPackages   = "packages"
	groupDisk       = "disk"
	groupSystem     = "system"
	groupRandom     = "random"
	groupTime       = "time"
	groupGit        = "git"
)

var (
	stringKind  = []lang.Kind{lang.KindString}
	integerKind = []lang.Kind{lang.KindInteger}
	numberKind  = []lang.Kind{lang.KindInteger, lang.KindFloat}
	mapKind     = []lang.Kind{lang.KindMap}
	wordsKind   = []lang.Kind{lang.KindString, lang.KindList}
)

type config struct {
	runner  Runner
	fetcher Fetcher
	stdout  io.Writer
	environ []string
	sudo    bool
}

// Option configures the macros returned by [Specs] and [NewRegistry].
type Option func(*config)

// WithRunner sets the process runner used by the command, packages, and
// disk macros. The default is an [ExecRunner].
func WithRunner(r Runner) Option {
	return func(c *config) { c.runner = r }
}

// WithFetcher sets the source used by download. The default is an
// [HTTPFetcher].
func WithFetcher(f Fetcher) Option {
	return func(c *config) { c.fetcher = f }
}

// WithOutput sets the writer used by output. The default is [os.Stdout].
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.stdout = w }
}

// WithEnviron replaces the process environment seen by env and expr. Each
// entry has the form "KEY=VALUE".
func WithEnviron(environ []string) Option {
	return func(c *config) { c.environ = environ }
}

// WithSudo controls whether package and disk commands run through sudo.
// It is enabled by default.
func WithSudo(enable bool) Option {
	return func(c *config) { c.sudo = enable }
}

func makeConfig(opts ...Option) *config {
	c := &config{
		runner:  ExecRunner{},
		fetcher: HTTPFetcher{},
		stdout:  os.Stdout,
		sudo:    true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.environ == nil {
		c.environ = os.Environ()
	}

	return c
}

// Specs returns every builtin macro.
func Specs(opts ...Option) []lang.Spec {
	c := makeConfig(opts...)

	return slices.Concat(
		c.generalSpecs(),
		dataSpecs(),
		c.filesystemSpecs(),
		c.commandSpecs(),
		c.networkSpecs(),
		c.packageSpecs(),
		c.diskSpecs(),
		c.systemSpecs(),
		randomSpecs(),
		timeSpecs(),
		gitSpecs(),
	)
}

// NewRegistry returns a frozen registry holding the core macros and every
// builtin macro.
func NewRegistry(opts ...Option) *lang.Registry {
	r := lang.NewRegistry()
	r.MustRegister(Specs(opts...)...)

	return r.Freeze()
}

// words flattens a String, or a List of Strings, into separate words. A
// String is split on white space.
func words(v lang.Value) ([]string, error) {
	if v.Kind() == lang.KindString {
		return strings.Fields(v.Str()), nil
	}

	return lang.Strings(v)
}

// external reports a failure of the host as an [lang.ErrExternal].
func external(err error, attrs ...slog.Attr) error {
	return lang.ErrExternal.Wrap(err).With(attrs...)
}

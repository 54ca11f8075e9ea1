package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/whale/lang"
)

type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type interpreterKey struct{}

// WithInterpreter returns a new context.Context carrying the interpreter that
// commands use to parse and run scripts.
func WithInterpreter(ctx context.Context, in *lang.Interpreter) context.Context {
	return context.WithValue(ctx, interpreterKey{}, in)
}

// interpreterFrom returns the interpreter stored by [WithInterpreter], or a
// core-only interpreter if there is none.
func interpreterFrom(ctx context.Context) *lang.Interpreter {
	if in, ok := ctx.Value(interpreterKey{}).(*lang.Interpreter); ok && in != nil {
		return in
	}

	return lang.New()
}

// Streams are the standard input and outputs of a command.
type Streams struct {
	In       io.Reader
	Out, Err io.Writer
}

type streamsKey struct{}

// WithStreams returns a new context.Context whose commands read from and
// write to s. Nil fields keep the process defaults.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is one named script input.
type source struct {
	name string
	io.Reader
}

// fileKey uniquely identifies a file by its device and inode numbers, so
// that symlinks and relative paths to the same file are deduplicated.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens each path in order, skipping any file already opened
// under another name. "-" reads stdin and may appear once; repeats are
// ignored. The returned function closes every opened file.
func openSources(ctx context.Context, paths []string) ([]source, func(), error) {
	var (
		srcs  []source
		files []*os.File
		stdin bool
	)

	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	seen := make(map[fileKey]struct{})

	for _, path := range paths {
		if path == stdinSource {
			if !stdin {
				stdin = true

				srcs = append(srcs, source{name: "<stdin>", Reader: streamsFrom(ctx).In})
			}

			continue
		}

		f, key, err := openFile(path)
		if err != nil {
			closeAll()

			return nil, nil, ErrOpenSource.With(slog.String("path", path)).Wrap(err)
		}

		if _, dup := seen[key]; dup {
			_ = f.Close()

			continue
		}

		seen[key] = struct{}{}
		files = append(files, f)
		srcs = append(srcs, source{name: path, Reader: f})
	}

	return srcs, closeAll, nil
}

func openFile(path string) (*os.File, fileKey, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, fileKey{}, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, fileKey{}, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, fileKey{}, err
	}

	key, ok := makeFileKey(info)
	if !ok {
		// No inode available; key on the absolute path instead.
		abs, _ := filepath.Abs(resolved)
		key = fileKey{dev: ^uint64(0), ino: xxh3.HashString(abs)}
	}

	return f, key, nil
}

// makeFileKey creates a fileKey from os.FileInfo. It returns false if the
// underlying Sys() data is not a *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

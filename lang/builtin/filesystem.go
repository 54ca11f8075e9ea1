package builtin

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/whale/lang"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

func (c *config) filesystemSpecs() []lang.Spec {
	path := func(name, desc string, fn func(string) (lang.Value, error)) lang.Spec {
		return lang.Spec{
			Name:        name,
			Group:       groupFilesystem,
			Description: desc,
			Params:      []string{"path"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{stringKind},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				return fn(call.Arg(0).Str())
			},
		}
	}

	predicate := func(name, desc string, fn func(string) bool) lang.Spec {
		return path(name, desc, func(p string) (lang.Value, error) {
			return lang.Bool(fn(p)), nil
		})
	}

	return []lang.Spec{
		path("read_file", "Read the contents of a file.", readFile),
		{
			Name:        "write_file",
			Group:       groupFilesystem,
			Description: "Replace the contents of a file, creating it if needed. Values that are not strings are written in source form.",
			Params:      []string{"path", "content"},
			MinArgs:     2,
			MaxArgs:     lang.Variadic,
			Kinds:       [][]lang.Kind{stringKind, nil},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				return writeFile(call.Arg(0).Str(), os.O_TRUNC, call.Args[1:])
			},
		},
		{
			Name:        "append_file",
			Group:       groupFilesystem,
			Description: "Append to a file, creating it if needed.",
			Params:      []string{"path", "content"},
			MinArgs:     2,
			MaxArgs:     lang.Variadic,
			Kinds:       [][]lang.Kind{stringKind, nil},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				return writeFile(call.Arg(0).Str(), os.O_APPEND, call.Args[1:])
			},
		},
		path("create_dir", "Create a directory and any missing parents.", createDir),
		{
			Name:        "read_dir",
			Group:       groupFilesystem,
			Description: "List a directory (default \".\") as a table of name, size, is_dir and modified. Directory names end with a slash.",
			Params:      []string{"path"},
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{stringKind},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				dir := "."
				if len(call.Args) > 0 {
					dir = call.Arg(0).Str()
				}

				return readDir(dir)
			},
		},
		path("remove_dir", "Remove a directory and everything in it.", removeDir),
		{
			Name:        "move_dir",
			Group:       groupFilesystem,
			Description: "Move a file or directory to a new path.",
			Params:      []string{"from", "to"},
			MinArgs:     2,
			MaxArgs:     2,
			Kinds:       [][]lang.Kind{stringKind, stringKind},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				from, to := call.Arg(0).Str(), call.Arg(1).Str()
				if err := os.Rename(from, to); err != nil {
					return lang.Empty(), external(err, slog.String("path", from), slog.String("target", to))
				}

				return lang.Empty(), nil
			},
		},
		path("file_metadata", "Describe a file: path, size, is_dir, mode, modified and read_only.", fileMetadata),
		path("remove", "Delete a file or an empty directory.", remove),
		{
			Name:        "trash",
			Group:       groupFilesystem,
			Description: "Move a file or directory to the desktop trash with gio.",
			Params:      []string{"path"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{stringKind},
			Macro:       c.trash,
		},
		predicate("file_exists", "Report whether a path exists.", fileExists),
		predicate("is_dir", "Report whether a path is a directory.", fileIsDir),
		predicate("is_file", "Report whether a path is a regular file.", fileIsRegular),
		predicate("is_symlink", "Report whether a path is a symbolic link.", fileIsSymlink),
	}
}

func (c *config) trash(ctx context.Context, call *lang.Invocation) (lang.Value, error) {
	path, err := filepath.Abs(call.Arg(0).Str())
	if err != nil {
		return lang.Empty(), external(err, slog.String("path", call.Arg(0).Str()))
	}

	if _, err := os.Lstat(path); err != nil {
		return lang.Empty(), external(err, slog.String("path", path))
	}

	if _, err := c.run(ctx, call, "gio", "trash", "--", path); err != nil {
		return lang.Empty(), err
	}

	return lang.Empty(), nil
}

func readFile(path string) (lang.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return lang.Empty(), external(err, slog.String("path", path))
	}

	return lang.String(string(data)), nil
}

func writeFile(path string, mode int, content []lang.Value) (lang.Value, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|mode, filePerm)
	if err != nil {
		return lang.Empty(), external(err, slog.String("path", path))
	}

	var sb strings.Builder
	for _, v := range content {
		sb.WriteString(lang.FormatValue(v))
	}

	if _, err := f.WriteString(sb.String()); err != nil {
		_ = f.Close()

		return lang.Empty(), external(err, slog.String("path", path))
	}

	if err := f.Close(); err != nil {
		return lang.Empty(), external(err, slog.String("path", path))
	}

	return lang.Empty(), nil
}

func createDir(path string) (lang.Value, error) {
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return lang.Empty(), external(err, slog.String("path", path))
	}

	return lang.Empty(), nil
}

func readDir(dir string) (lang.Value, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return lang.Empty(), external(err, slog.String("path", dir))
	}

	rows := make([][]lang.Value, 0, len(entries))

	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return lang.Empty(), external(err, slog.String("path", filepath.Join(dir, e.Name())))
		}

		name := e.Name()
		if e.IsDir() {
			name += "/"
		}

		rows = append(rows, []lang.Value{
			lang.String(name),
			lang.Int(info.Size()),
			lang.Bool(e.IsDir()),
			lang.TimeValue(lang.NewTime(info.ModTime())),
		})
	}

	t, err := lang.NewTable([]string{"name", "size", "is_dir", "modified"}, rows...)
	if err != nil {
		return lang.Empty(), err
	}

	return lang.TableValue(t), nil
}

func removeDir(path string) (lang.Value, error) {
	if err := os.RemoveAll(path); err != nil {
		return lang.Empty(), external(err, slog.String("path", path))
	}

	return lang.Empty(), nil
}

func remove(path string) (lang.Value, error) {
	if err := os.Remove(path); err != nil {
		return lang.Empty(), external(err, slog.String("path", path))
	}

	return lang.Empty(), nil
}

func fileMetadata(path string) (lang.Value, error) {
	info, err := os.Stat(path)
	if err != nil {
		return lang.Empty(), external(err, slog.String("path", path))
	}

	return lang.MapValue(lang.MapOf(
		"path", lang.String(path),
		"size", lang.Int(info.Size()),
		"is_dir", lang.Bool(info.IsDir()),
		"mode", lang.String(info.Mode().String()),
		"modified", lang.TimeValue(lang.NewTime(info.ModTime())),
		"read_only", lang.Bool(info.Mode().Perm()&0o222 == 0),
	)), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil || !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func fileIsSymlink(path string) bool {
	info, err := os.Lstat(path)

	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

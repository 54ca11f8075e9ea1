package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/whale/pkg"
)

// baseConfig is the base name of the whale-language configuration file.
const baseConfig = "config" + pkg.Extension

var defaultDirMode os.FileMode = 0o700

// basePrefix is the name of the per-user directories, derived from the
// executable name:
//   - "__debug_bin123" (dlv output) becomes the package name
//   - leading dots are removed
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		for _, sub := range []struct {
			rex *regexp.Regexp
			rep string
		}{
			{regexp.MustCompile(`^__debug_bin\d*$`), pkg.Name},
			{regexp.MustCompile(`^\.+`), ""},
		} {
			id = sub.rex.ReplaceAllString(id, sub.rep)
		}

		if id == "" {
			return pkg.Name
		}

		return id
	},
)

// userDir returns a per-user directory under the root selected by user,
// falling back to fallback under the home directory and then to the
// working directory.
func userDir(user func() (string, error), fallback string) string {
	dir, err := user()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// cacheDir holds transient files such as profiles and REPL history.
var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath joins elem onto [configDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// cachePath joins elem onto [cacheDir].
func cachePath(elem ...string) string {
	return filepath.Join(append([]string{cacheDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

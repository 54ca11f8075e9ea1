//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the whale module embedded at build time.
// It is printed by the CLI when users pass the --version flag.
//
//go:embed VERSION
var version string

// Version returns the embedded semantic version with surrounding whitespace
// removed.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command and module identifier used across the
	// project. It appears in help text, history files and default config paths.
	Name = "whale"
	// Description is a short, human-readable summary of the project used in
	// help output.
	Description = "Data-oriented scripting language for system management"
	// Extension is the conventional file extension of whale scripts.
	Extension = ".whale"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}

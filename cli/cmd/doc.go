// Package cmd implements the whale subcommands: run, eval, fmt, macros, init
// and repl.
//
// Commands receive their collaborators through the [context.Context] kong
// binds for them: the parsed [kong.Context] ([WithContext]), the configured
// interpreter ([WithInterpreter]) and the standard streams ([WithStreams]).
package cmd

var (
	// CacheIdentifier is the kong variable holding the runtime cache
	// directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the path of the
	// whale-language configuration file.
	ConfigIdentifier = "config"
)

// Package cmd implements the formula subcommands: eval, parse, fmt and repl.
//
// Each command is a kong command struct with a Run(context.Context) error
// method. Commands read their output writer, input reader and the parsed
// [kong.Context] from the context passed to Run.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the configuration file, without extension.
	ConfigIdentifier = "config"

	// HistoryIdentifier is the kong variable identifier containing the
	// default path of the REPL history file.
	HistoryIdentifier = "history"
)

// Package log is the structured logger shared by the evaluator, the store
// and the command line. It wraps [log/slog] with a trace level below debug,
// functional options and colorized terminal handlers.
//
// The zero [Logger] discards every record. The lang and store packages keep
// one unconditionally and log per-operation events at [LevelTrace]:
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelTrace))
//	env := lang.NewEnv(lang.WithLogger(logger))
//
// Records are JSON or text ([WithFormat]). With [WithPretty] they are
// colorized for a terminal: text records stay on one line with group keys
// joined by dots, and JSON records are indented with groups nested. Errors
// that implement [slog.LogValuer], such as parse errors, render as groups in
// every format.
//
// The package-level functions write to a default logger that the command
// line reconfigures with [Config] while it parses flags.
package log

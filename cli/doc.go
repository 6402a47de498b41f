// Package cli contains the command line interface for formula.
//
// # Usage
//
//	formula [flags] [eval] EXPR...
//	formula parse [-o json|yaml] [--spans] EXPR...
//	formula fmt [--check] EXPR...
//	formula repl
//
// eval is the default command. Expressions are evaluated in order against
// one environment, so assignments made by one are visible to the next.
//
// # Configuration
//
// Flag defaults are read from config.json, config.yaml or config.yml in the
// user configuration directory (~/.config/formula on Linux). YAML keys may be
// nested and may be scoped to a command:
//
//	log:
//	  level: debug
//	eval:
//	  output: json
//	  var: ["rate=0.07"]
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/formula/pprof)
package cli

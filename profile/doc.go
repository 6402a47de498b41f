// Package profile provides optional runtime profiling for the formula
// command.
//
// Profiling is built on [github.com/pkg/profile] and compiled in only with
// the "pprof" build tag:
//
//	go build -tags pprof -o formula .
//
// Without the tag, [Config.Start] returns a no-op and [Modes] is empty.
//
// # Modes
//
// The supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread and trace. Use [Modes] to list them programmatically.
//
// # Usage
//
//	c := profile.Make(profile.WithMode("cpu"), profile.WithPath("/tmp/profiles"))
//	defer c.Start().Stop()
//
// From the command line:
//
//	formula --pprof-mode cpu eval 'sum(1, 2, 3)'
//	go tool pprof -http=: ~/.cache/formula/pprof/cpu.pprof
//
// Profiles are written to the cache directory by default, under pprof/.
// The pprof build also registers the [net/http/pprof] handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

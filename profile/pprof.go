//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the supported profiling modes in lexical order.
var Modes = sync.OnceValue(func() []string {
	return slices.Sorted(maps.Keys(modes))
})

var modes = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// options collects the pkg/profile options for one profiling session.
type options []func(*profile.Profile)

func (o options) mode(m string) options {
	if fn, ok := modes[m]; ok {
		return append(o, fn)
	}

	return o
}

func (o options) path(p string) options {
	if p == "" {
		return o
	}

	return append(o, profile.ProfilePath(p))
}

func (o options) quiet(q bool) options {
	if !q {
		return o
	}

	return append(o, profile.Quiet)
}

func start(mode, path string, quiet bool) interface{ Stop() } {
	opts := options(nil).mode(mode)

	// Unknown mode.
	if len(opts) == 0 {
		return ignore{}
	}

	return profile.Start(opts.path(path).quiet(quiet)...)
}

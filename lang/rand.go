package lang

import (
	"math/rand/v2"
	"sync"

	"github.com/zeebo/xxh3"
)

// NewRandom returns a source of pseudo-random values in [0, 1) determined
// entirely by seed. The 128-bit xxh3 hash of seed seeds a PCG generator, so
// equal seeds yield equal sequences on every platform.
//
// The returned function is safe for concurrent use.
func NewRandom(seed string) func() float64 {
	sum := xxh3.HashString128(seed)
	r := rand.New(rand.NewPCG(sum.Hi, sum.Lo))

	var mu sync.Mutex

	return func() float64 {
		mu.Lock()
		defer mu.Unlock()

		return r.Float64()
	}
}

package game

import (
	"math/rand"
	"time"
)

// RandomSource is the only source of randomness the wave engine uses.
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64 // [0.0, 1.0)
	Intn(n int) int   // [0, n)
}

// NewRandom returns a seeded source. A zero seed is replaced by the clock.
func NewRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)) // #nosec G404 -- gameplay only
}

// uniform returns a value drawn uniformly from [lo, hi].
func uniform(rng RandomSource, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// intBetween returns an integer drawn uniformly from [lo, hi] inclusive.
func intBetween(rng RandomSource, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

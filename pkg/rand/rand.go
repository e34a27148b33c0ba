// Package rand provides a small seedable PCG generator for sampling zone
// interiors and simulator weather.
package rand

import (
	"github.com/MichaelTJones/pcg"
)

const pcgSequence = 0xda3e39cb94b95bdb

// Rand is a deterministic generator. The zero value is not usable; call New.
type Rand struct {
	r *pcg.PCG32
}

// New returns a generator seeded with seed.
func New(seed int64) *Rand {
	r := &Rand{r: pcg.NewPCG32()}
	r.Seed(seed)
	return r
}

// Seed resets the generator state.
func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), pcgSequence)
}

// Intn returns a value in [0, n).
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.r.Bounded(uint32(n)))
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.r.Random()) / (1 << 32)
}

// Range returns a value in [lo, hi).
func (r *Rand) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

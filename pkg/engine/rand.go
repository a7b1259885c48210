package engine

import "math/rand/v2"

// Rand is the randomness source behind every generative decision, so a smash
// is reproducible under a fixed seed. *rand.Rand from math/rand/v2 satisfies
// it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a seeded PCG-backed source.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

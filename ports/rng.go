package ports

import (
	"math/rand"
)

// RNG provides seeded random number generation for deterministic operations.
// Training is the only randomized path in the system; inference never draws
// random numbers. A fixed seed must reproduce an identical model bundle.
type RNG interface {
	// Stream creates a deterministic generator for a named operation
	Stream(name string, seed int64) *rand.Rand
}

// SeededRNG is the default RNG implementation. The stream name is folded into
// the seed so distinct operations sharing a base seed stay independent.
type SeededRNG struct{}

// Stream returns a rand.Rand seeded from the operation name and base seed
func (SeededRNG) Stream(name string, seed int64) *rand.Rand {
	h := int64(1469598103934665603)
	for _, c := range name {
		h ^= int64(c)
		h *= 1099511628211
	}
	return rand.New(rand.NewSource(seed ^ h))
}

package cache

import "math/rand"

// A RandSource picks the line that a random-replacement cache probes.
type RandSource interface {
	// Intn returns a number in [0, n).
	Intn(n int) int
}

// NewRandSource returns a deterministic source seeded with seed.
func NewRandSource(seed int64) RandSource {
	return rand.New(rand.NewSource(seed))
}

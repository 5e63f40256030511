// Package randutil derives reproducible random sources from a single seed.
package randutil

import "math/rand"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded from seed. Nearby seeds give unrelated
// sequences.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(int64(mix(uint64(seed)))))
}

// Stream returns the n'th source derived from seed, so parallel workers can
// share one seed without sharing a sequence.
func Stream(seed int64, n int) *rand.Rand {
	return New(int64(mix(uint64(seed) + uint64(n+1)*goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Package rng centralizes the seeded random streams of a run. Every phase
// (catalog selection, population, room assignment, enrollment) owns one
// stream so that a phase can be replayed on its own.
//
// math/rand.Rand is not goroutine-safe; a stream belongs to one run.
package rng

import "math/rand"

// DefaultSeed is used when a caller passes seed==0.
const DefaultSeed int64 = 1

// New returns a deterministic *rand.Rand. seed==0 means DefaultSeed.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// Shuffle is an in-place Fisher–Yates shuffle driven by r.
func Shuffle[T any](r *rand.Rand, a []T) {
	for i := len(a) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// Pick returns a uniformly chosen element of a. a must not be empty.
func Pick[T any](r *rand.Rand, a []T) T {
	return a[r.Intn(len(a))]
}

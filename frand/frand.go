// Package frand implements the xorshift* based fast pseudorandom source
// used throughout the simulation, plus the clipped Gaussian sampler that
// drives evolutionary mutation.
//
// https://en.wikipedia.org/wiki/Xorshift
package frand

import (
	"math/rand"
	"time"
)

// Source is a xorshift* random number generator.
type Source struct {
	state uint64
	rand  *rand.Rand
}

var _ rand.Source64 = (*Source)(nil)

// New returns a new random number generator for the given seed.
func New(seed int64) *Source {
	s := &Source{state: uint64(seed) + 1}
	s.rand = rand.New(s)
	return s
}

// NewTime returns a generator seeded from the wall clock.
func NewTime() *Source {
	return New(time.Now().UnixNano())
}

// Seed seeds the random number generator.
func (s *Source) Seed(seed int64) {
	s.state = uint64(seed) + 1
}

// Uint64 returns a random number.
func (s *Source) Uint64() uint64 {
	state := s.state + 1442695040888963407
	state ^= state >> 12
	state ^= state << 25
	state ^= state >> 27
	s.state = state
	return state * 6364136223846793005
}

// Int63 returns a random number in [0, 1<<63).
func (s *Source) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

// Intn returns a random number in [0, n).
func (s *Source) Intn(n int) int {
	return s.rand.Intn(n)
}

// Gaussian returns a Gaussian distributed integer around mean with the
// given deviation, clamped to [min, max].
func (s *Source) Gaussian(mean int, deviation float64, min, max int) int {
	v := int(float64(mean) + s.rand.NormFloat64()*deviation + 0.5)
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

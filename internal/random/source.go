// Package random provides the seedable pseudo-random source that drives every
// simulated reading in qdash. Tests construct it with a fixed seed.
package random

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Source is a goroutine-safe pseudo-random generator
type Source struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed uint64
}

// New creates a source from seed. A zero seed derives one from the clock.
func New(seed int64) *Source {
	s := uint64(seed)
	if seed == 0 {
		s = uint64(time.Now().UnixNano())
	}
	return &Source{
		rng:  rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)),
		seed: s,
	}
}

// NewSeeded is shorthand for tests
func NewSeeded(seed int64) *Source {
	if seed == 0 {
		seed = 1
	}
	return New(seed)
}

// Seed returns the effective seed
func (s *Source) Seed() uint64 {
	return s.seed
}

// Float64 returns a value in [0,1)
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// IntN returns a value in [0,n). n <= 0 returns 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Between returns a value in [min,max)
func (s *Source) Between(min, max float64) float64 {
	return min + s.Float64()*(max-min)
}

// Duration returns a duration in [min,max]. Equal bounds return min.
func (s *Source) Duration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + time.Duration(s.rng.Int64N(int64(max-min)+1))
}

// Chance reports true with probability p
func (s *Source) Chance(p float64) bool {
	return s.Float64() < p
}

// Base36 returns n random characters from [0-9a-z]
func (s *Source) Base36(n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36[s.rng.IntN(len(base36))])
	}
	return b.String()
}

// Read fills p with random bytes. It never fails, which lets the source feed
// uuid.NewRandomFromReader so ids are reproducible under a fixed seed.
func (s *Source) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < len(p); i += 8 {
		v := s.rng.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}

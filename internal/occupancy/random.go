package occupancy

import (
	"math/rand"
	"sync"
	"time"
)

// RandomSource supplies uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// LockedSource is a seeded math/rand source safe for concurrent use.
type LockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a source seeded with seed, or with the current time when
// seed is zero.
func NewSource(seed int64) *LockedSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LockedSource{rng: rand.New(rand.NewSource(seed))}
}

// Float64 implements RandomSource.
func (s *LockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

package candle

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Source yields uniformly distributed values in [0, 1).
// *rand.Rand satisfies it directly.
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Global returns the process-wide source backed by math/rand/v2.
// It is safe for concurrent use.
func Global() Source {
	return globalSource{}
}

// lockedSource serializes access to a seeded generator.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Seeded returns a deterministic source safe for concurrent use.
func Seeded(seed uint64) Source {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Number returns a uniform value in [min, max] rounded to 2 decimals.
// Reversed bounds are swapped; equal bounds return that bound.
func Number(src Source, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}
	return Round2(src.Float64()*(max-min) + min)
}

// Round2 rounds v to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

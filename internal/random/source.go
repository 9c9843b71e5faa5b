// Package random provides the injectable randomness used by the generators.
//
// A *rand.Rand is not goroutine-safe; every Source is owned by a single
// writer (the chart session) and must not be shared across goroutines.
package random

import "math/rand"

// Source yields uniform draws in [0,1).
type Source interface {
	Float64() float64
}

// defaultSeed replaces a zero seed so that the zero value stays reproducible.
const defaultSeed int64 = 1

// New returns a deterministic source. Seed 0 maps to defaultSeed.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// Sequence replays a fixed list of draws, wrapping around at the end.
// Intended for tests that need to steer a generator.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence panics on an empty list or a value outside [0,1).
func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		panic("random: NewSequence with no values")
	}
	for _, v := range values {
		if v < 0 || v >= 1 {
			panic("random: sequence value out of [0,1)")
		}
	}
	return &Sequence{values: append([]float64(nil), values...)}
}

func (s *Sequence) Float64() float64 {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// Draws reports how many values have been consumed modulo the list length.
func (s *Sequence) Draws() int { return s.next }

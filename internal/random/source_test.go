package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ZeroSeedIsReproducible(t *testing.T) {
	a, b := New(0), New(defaultSeed)
	for i := 0; i < 16; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSequence_Wraps(t *testing.T) {
	s := NewSequence(0.1, 0.5, 0.9)
	got := []float64{s.Float64(), s.Float64(), s.Float64(), s.Float64()}
	assert.Equal(t, []float64{0.1, 0.5, 0.9, 0.1}, got)
	assert.Equal(t, 1, s.Draws())
}

func TestNewSequence_RejectsOutOfRange(t *testing.T) {
	assert.Panics(t, func() { NewSequence() })
	assert.Panics(t, func() { NewSequence(1.0) })
	assert.Panics(t, func() { NewSequence(-0.1) })
}

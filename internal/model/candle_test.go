package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandle_Validate(t *testing.T) {
	ok := Candle{Time: 1, Open: 10, High: 12, Low: 9, Close: 11}
	assert.NoError(t, ok.Validate())

	doji := Candle{Time: 1, Open: 10, High: 10, Low: 10, Close: 10}
	assert.NoError(t, doji.Validate())
	assert.True(t, doji.Green())

	var inv *InvariantError
	err := Candle{Time: 1, Open: 10, High: 10.5, Low: 9, Close: 11}.Validate()
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "high", inv.Rule)

	err = Candle{Time: 1, Open: 10, High: 12, Low: 10.5, Close: 11}.Validate()
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "low", inv.Rule)
}

func TestCandle_FollowedBy(t *testing.T) {
	a := Candle{Time: 10, Open: 100, High: 101, Low: 98, Close: 99}
	b := Candle{Time: 12, Open: 99, High: 103, Low: 99, Close: 102}
	assert.NoError(t, a.FollowedBy(b))

	var inv *InvariantError
	gap := b
	gap.Open = 99.01
	require.ErrorAs(t, a.FollowedBy(gap), &inv)
	assert.Equal(t, "continuity", inv.Rule)

	stale := b
	stale.Time = 10
	require.ErrorAs(t, a.FollowedBy(stale), &inv)
	assert.Equal(t, "time", inv.Rule)
}

func TestCandle_Shape(t *testing.T) {
	red := Candle{Open: 110, High: 113, Low: 99, Close: 100}
	assert.False(t, red.Green())
	assert.Equal(t, 10.0, red.Body())
	assert.Equal(t, 110.0, red.BodyTop())
	assert.Equal(t, 100.0, red.BodyBottom())
}

func TestRoundPrice(t *testing.T) {
	cases := map[float64]float64{
		52500:      52500,
		1.005:      1.01,
		-1.005:     -1.01,
		99.994:     99.99,
		0.1 + 0.2:  0.3,
		12345.6789: 12345.68,
	}
	for in, want := range cases {
		assert.Equal(t, want, RoundPrice(in), "round %v", in)
	}

	c := Candle{Time: 3, Open: 1.234, High: 2.345, Low: 0.996, Close: 1.5}.Rounded()
	assert.Equal(t, Candle{Time: 3, Open: 1.23, High: 2.35, Low: 1, Close: 1.5}, c)
}

func TestMustHold(t *testing.T) {
	assert.NotPanics(t, func() { MustHold(nil) })
	assert.Panics(t, func() { MustHold(Candle{Open: 2, High: 1, Low: 1, Close: 2}.Validate()) })
}

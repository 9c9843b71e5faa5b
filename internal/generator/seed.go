// Package generator synthesizes historical candle sequences.
package generator

import (
	"errors"
	"fmt"

	"CandleDream/internal/model"
	"CandleDream/internal/random"
)

// Candle spacing in seconds.
const (
	LiveStep  int64 = 2
	DailyStep int64 = 24 * 60 * 60
)

// ErrInvalidParams is returned for a request no generator can satisfy.
var ErrInvalidParams = errors.New("invalid generator parameters")

// Params describes the sequence to produce. The last candle is stamped
// EndTime and earlier candles step back from it.
type Params struct {
	StartPrice float64
	Count      int
	Step       int64
	EndTime    int64
}

func (p Params) validate() error {
	switch {
	case p.StartPrice <= 0:
		return fmt.Errorf("%w: start price %.2f", ErrInvalidParams, p.StartPrice)
	case p.Count < 1:
		return fmt.Errorf("%w: count %d", ErrInvalidParams, p.Count)
	case p.Step <= 0:
		return fmt.Errorf("%w: step %d", ErrInvalidParams, p.Step)
	}
	return nil
}

func (p Params) firstTime() int64 { return p.EndTime - int64(p.Count-1)*p.Step }

// Seed builds Count candles starting at StartPrice. Every candle opens at the
// previous rounded close, so the result obeys the continuity law. The output
// depends only on the arguments and the draws taken from src.
func Seed(src random.Source, p Params, profile model.BiasProfile) ([]model.Candle, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	out := make([]model.Candle, p.Count)
	open := model.RoundPrice(p.StartPrice)
	t := p.firstTime()
	momentum := 0.0
	for i := range out {
		var c model.Candle
		c, momentum = seedCandle(src, profile, open, momentum)
		c.Time = t
		model.MustHold(c.Validate())
		if i > 0 {
			model.MustHold(out[i-1].FollowedBy(c))
		}
		out[i] = c
		open = c.Close
		t += p.Step
	}
	return out, nil
}

// Continue runs a second seeding pass that picks up where last left off.
func Continue(src random.Source, last model.Candle, count int, step int64, profile model.BiasProfile) ([]model.Candle, error) {
	return Seed(src, Params{
		StartPrice: last.Close,
		Count:      count,
		Step:       step,
		EndTime:    last.Time + int64(count)*step,
	}, profile)
}

// seedCandle draws one candle: direction, tiered body size, smoothed
// momentum, then wicks sized off the body and skewed toward the rejection side.
func seedCandle(src random.Source, p model.BiasProfile, open, momentum float64) (model.Candle, float64) {
	green := src.Float64() < p.GreenProb
	tier := p.PickTier(src.Float64())
	band := tier.Red
	if green {
		band = tier.Green
	}
	size := band.At(src.Float64())
	momentum = momentum*p.Momentum.Decay + (src.Float64()-p.Momentum.Center)*p.Momentum.Scale

	sign := -1.0
	if green {
		sign = 1
	}
	c := model.Candle{Open: open, Close: model.RoundPrice(open + sign*size + momentum)}

	w := size * p.Wicks.SeedRatio
	major, minor := w*p.Wicks.SeedDominant, w*(1-p.Wicks.SeedDominant)
	upper, lower := major, minor
	if green {
		upper, lower = minor, major
	}
	upper += src.Float64() * p.Wicks.SeedJitter
	lower += src.Float64() * p.Wicks.SeedJitter

	c.High = model.RoundPrice(c.BodyTop() + upper)
	c.Low = model.RoundPrice(c.BodyBottom() - lower)
	return c, momentum
}

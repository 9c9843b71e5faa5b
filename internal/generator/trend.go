package generator

import (
	"fmt"
	"math"

	"CandleDream/internal/model"
	"CandleDream/internal/random"
)

// TrendProfile drives Trending: each candle moves by TrendPct percent of the
// price plus a symmetric volatility term.
type TrendProfile struct {
	Name       string
	TrendPct   float64
	Volatility float64

	// Pullback candles replace the trend with PullbackPct and a damped
	// volatility term.
	PullbackChance   float64
	PullbackPct      float64
	PullbackVolShare float64

	// Wicks: a fixed jitter plus an optional body-proportional part.
	FixedWick      float64
	BodyWickMin    float64
	BodyWickSpread float64
	UpperSkew      float64
	LowerSkew      float64

	BaseVolume   float64
	VolumeSpread float64
}

// DownTrend is a steady daily decline.
func DownTrend() TrendProfile {
	return TrendProfile{
		Name:         "down",
		TrendPct:     -0.8,
		Volatility:   4,
		FixedWick:    2,
		BaseVolume:   50000,
		VolumeSpread: 100000,
	}
}

// UpTrend is a strong advance with occasional pullback days.
func UpTrend() TrendProfile {
	return TrendProfile{
		Name:             "up",
		TrendPct:         1.8,
		Volatility:       4,
		PullbackChance:   0.1,
		PullbackPct:      -0.5,
		PullbackVolShare: 0.5,
		BodyWickMin:      0.3,
		BodyWickSpread:   0.7,
		UpperSkew:        2,
		LowerSkew:        1.5,
		BaseVolume:       60000,
		VolumeSpread:     120000,
	}
}

// Trending builds a percent-of-price trend series with matching volume bars.
// Lows are floored at zero.
func Trending(src random.Source, p Params, tp TrendProfile) ([]model.Candle, []model.VolumeBar, error) {
	if err := p.validate(); err != nil {
		return nil, nil, err
	}
	if tp.PullbackChance < 0 || tp.PullbackChance > 1 {
		return nil, nil, fmt.Errorf("%w: pullback chance %.2f", ErrInvalidParams, tp.PullbackChance)
	}

	candles := make([]model.Candle, p.Count)
	volume := make([]model.VolumeBar, p.Count)
	open := model.RoundPrice(p.StartPrice)
	t := p.firstTime()
	for i := range candles {
		vol := (src.Float64() - 0.5) * tp.Volatility
		factor := tp.TrendPct + vol
		if src.Float64() < tp.PullbackChance {
			factor = tp.PullbackPct + vol*tp.PullbackVolShare
		}

		c := model.Candle{Time: t, Open: open, Close: model.RoundPrice(open + open*factor/100)}
		body := c.Body()
		mult := tp.BodyWickMin + src.Float64()*tp.BodyWickSpread
		upper := body*mult*src.Float64()*tp.UpperSkew + src.Float64()*tp.FixedWick
		lower := body*mult*src.Float64()*tp.LowerSkew + src.Float64()*tp.FixedWick
		c.High = model.RoundPrice(c.BodyTop() + upper)
		c.Low = model.RoundPrice(math.Max(0, c.BodyBottom()-lower))

		model.MustHold(c.Validate())
		if i > 0 {
			model.MustHold(candles[i-1].FollowedBy(c))
		}
		candles[i] = c
		volume[i] = model.VolumeBar{
			Time:  t,
			Value: math.Floor(tp.BaseVolume + src.Float64()*tp.VolumeSpread),
			Up:    c.Close > c.Open,
		}
		open = c.Close
		t += p.Step
	}
	return candles, volume, nil
}

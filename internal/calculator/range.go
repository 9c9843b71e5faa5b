package calculator

import (
	"errors"
	"fmt"

	"CandleDream/internal/model"
)

// ErrEmptyWindow is returned for a window without candles.
var ErrEmptyWindow = errors.New("no candles provided")

// WindowRange returns the extremes of the newest lookback candles. A lookback
// of zero or less covers the whole window.
func WindowRange(candles []model.Candle, lookback int) (high, low float64, err error) {
	if len(candles) == 0 {
		return 0, 0, ErrEmptyWindow
	}
	if lookback > 0 && len(candles) > lookback {
		candles = candles[len(candles)-lookback:]
	}
	high, low = candles[0].High, candles[0].Low
	for _, c := range candles[1:] {
		high = max(high, c.High)
		low = min(low, c.Low)
	}
	return high, low, nil
}

// RangePosition places price within [low, high] as 0..1, clamped. A flat
// range puts it in the middle.
func RangePosition(price, high, low float64) (float64, error) {
	switch {
	case high < low:
		return 0, fmt.Errorf("inverted range: high %.2f < low %.2f", high, low)
	case high == low:
		return 0.5, nil
	}
	return min(1, max(0, (price-low)/(high-low))), nil
}

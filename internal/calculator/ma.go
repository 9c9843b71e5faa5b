package calculator

import (
	"errors"
	"fmt"

	"CandleDream/internal/model"
)

var (
	ErrPeriod      = errors.New("period must be positive")
	ErrShortWindow = errors.New("window shorter than period")
)

// SMA averages the closes of the newest period candles.
func SMA(candles []model.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrPeriod
	}
	if len(candles) < period {
		return 0, fmt.Errorf("%w: %d < %d", ErrShortWindow, len(candles), period)
	}
	sum := 0.0
	for _, c := range candles[len(candles)-period:] {
		sum += c.Close
	}
	return sum / float64(period), nil
}

// GreenRatio is the share of candles that closed at or above their open.
func GreenRatio(candles []model.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	n := 0
	for _, c := range candles {
		if c.Green() {
			n++
		}
	}
	return float64(n) / float64(len(candles))
}

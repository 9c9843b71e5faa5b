package calculator

import "CandleDream/internal/model"

// Periods of the status indicators, in candles.
const (
	FastPeriod = 10
	SlowPeriod = 30
	RSIPeriod  = 14
)

// Compute builds the indicator set for a closed window marked at price.
// Averages that lack data are left at zero.
func Compute(window []model.Candle, price float64) model.WindowIndicators {
	ind := model.WindowIndicators{CurrentPrice: price, GreenRatio: GreenRatio(window)}
	if v, err := SMA(window, FastPeriod); err == nil {
		ind.SMAFast = model.RoundPrice(v)
	}
	if v, err := SMA(window, SlowPeriod); err == nil {
		ind.SMASlow = model.RoundPrice(v)
	}
	ind.RSI, _ = WindowRSI(window, RSIPeriod)
	if high, low, err := WindowRange(window, 0); err == nil {
		ind.High, ind.Low = high, low
		ind.Position, _ = RangePosition(price, high, low)
	}
	return ind
}

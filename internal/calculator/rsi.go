package calculator

import "CandleDream/internal/model"

// RSI is a Wilder-smoothed relative strength index fed one close at a time.
// The first period changes seed plain averages; later ones are smoothed.
type RSI struct {
	period     int
	seen       int
	prev       float64
	gain, loss float64
}

// NewRSI returns an empty index over period changes.
func NewRSI(period int) (*RSI, error) {
	if period <= 0 {
		return nil, ErrPeriod
	}
	return &RSI{period: period}, nil
}

// Add feeds the next close.
func (r *RSI) Add(price float64) {
	r.seen++
	if r.seen == 1 {
		r.prev = price
		return
	}
	change := price - r.prev
	r.prev = price
	up, down := max(change, 0), max(-change, 0)

	p := float64(r.period)
	if r.seen <= r.period+1 {
		r.gain += up / p
		r.loss += down / p
		return
	}
	r.gain = (r.gain*(p-1) + up) / p
	r.loss = (r.loss*(p-1) + down) / p
}

// Ready reports whether a full period of changes has been seen.
func (r *RSI) Ready() bool { return r.seen > r.period }

// Value is 50 until Ready and for a flat series.
func (r *RSI) Value() float64 {
	switch {
	case !r.Ready(), r.gain == 0 && r.loss == 0:
		return 50
	case r.loss == 0:
		return 100
	}
	return 100 - 100/(1+r.gain/r.loss)
}

// WindowRSI replays the closes of candles through a fresh RSI.
func WindowRSI(candles []model.Candle, period int) (float64, error) {
	r, err := NewRSI(period)
	if err != nil {
		return 0, err
	}
	for _, c := range candles {
		r.Add(c.Close)
	}
	return r.Value(), nil
}

package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SeriesID names one of the chart's series.
type SeriesID string

const (
	Reality SeriesID = "reality"
	Dream   SeriesID = "dream"
)

// Candle is one OHLC bar. Time is unix seconds.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Green reports whether the candle closed at or above its open.
func (c Candle) Green() bool { return c.Close >= c.Open }

// Body returns the absolute open-close distance.
func (c Candle) Body() float64 {
	if c.Close > c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// BodyTop returns max(open, close).
func (c Candle) BodyTop() float64 { return max(c.Open, c.Close) }

// BodyBottom returns min(open, close).
func (c Candle) BodyBottom() float64 { return min(c.Open, c.Close) }

// Rounded returns the candle with every price rounded to cents.
func (c Candle) Rounded() Candle {
	return Candle{
		Time:  c.Time,
		Open:  RoundPrice(c.Open),
		High:  RoundPrice(c.High),
		Low:   RoundPrice(c.Low),
		Close: RoundPrice(c.Close),
	}
}

// Validate checks the OHLC bound invariant.
func (c Candle) Validate() error {
	if c.High < c.BodyTop() {
		return &InvariantError{Rule: "high", Candle: c, Detail: fmt.Sprintf("high %.2f below body top %.2f", c.High, c.BodyTop())}
	}
	if c.Low > c.BodyBottom() {
		return &InvariantError{Rule: "low", Candle: c, Detail: fmt.Sprintf("low %.2f above body bottom %.2f", c.Low, c.BodyBottom())}
	}
	return nil
}

// FollowedBy checks that next may directly follow c in one series.
func (c Candle) FollowedBy(next Candle) error {
	if next.Open != c.Close {
		return &InvariantError{Rule: "continuity", Candle: next, Detail: fmt.Sprintf("open %.2f != previous close %.2f", next.Open, c.Close)}
	}
	if next.Time <= c.Time {
		return &InvariantError{Rule: "time", Candle: next, Detail: fmt.Sprintf("time %d not after %d", next.Time, c.Time)}
	}
	return nil
}

// RoundPrice rounds v to two decimals, half away from zero.
func RoundPrice(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// InvariantError reports a generated candle that breaks a series law.
type InvariantError struct {
	Rule   string
	Candle Candle
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("candle invariant %q violated at t=%d: %s", e.Rule, e.Candle.Time, e.Detail)
}

// VolumeBar is a volume column aligned with a candle.
type VolumeBar struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
	Up    bool    `json:"up"`
}

// MustHold panics on a broken invariant. Generators call it before a candle
// leaves their hands; a violation is a defect in the generation code.
func MustHold(err error) {
	if err != nil {
		panic(err)
	}
}

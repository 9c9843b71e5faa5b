package calculator

import (
	"errors"
	"math"
	"testing"

	"CandleDream/internal/model"
)

func ramp(n int, start, step float64) []model.Candle {
	out := make([]model.Candle, n)
	price := start
	for i := range out {
		c := model.Candle{Time: int64(i) * 2, Open: price, Close: price + step}
		c.High = math.Max(c.Open, c.Close) + 1
		c.Low = math.Min(c.Open, c.Close) - 1
		out[i] = c
		price = c.Close
	}
	return out
}

func TestSMA(t *testing.T) {
	got, err := SMA(ramp(5, 0, 1), 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != 4 {
		t.Errorf("expected 4, got %.2f", got)
	}
	if _, err := SMA(ramp(1, 0, 1), 3); !errors.Is(err, ErrShortWindow) {
		t.Errorf("expected ErrShortWindow, got %v", err)
	}
	if _, err := SMA(nil, 0); !errors.Is(err, ErrPeriod) {
		t.Errorf("expected ErrPeriod, got %v", err)
	}
}

func TestWindowRSI_Extremes(t *testing.T) {
	cases := []struct {
		name    string
		candles []model.Candle
		want    float64
	}{
		{"rally", ramp(30, 100, 2), 100},
		{"sell-off", ramp(30, 100, -2), 0},
		{"flat", ramp(30, 100, 0), 50},
		{"short", ramp(5, 100, 1), 50},
	}
	for _, tc := range cases {
		got, err := WindowRSI(tc.candles, 14)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("%s: expected RSI %.0f, got %.2f", tc.name, tc.want, got)
		}
	}
	if _, err := WindowRSI(nil, 0); !errors.Is(err, ErrPeriod) {
		t.Errorf("expected ErrPeriod, got %v", err)
	}
}

func TestRSI_Wilder(t *testing.T) {
	// closes 10, 11, 10, 12 with period 2: seed gain 0.5 loss 0.5, then +2
	r, err := NewRSI(2)
	if err != nil {
		t.Fatal(err)
	}
	for i, price := range []float64{10, 11, 10} {
		r.Add(price)
		if i < 2 && r.Ready() {
			t.Errorf("ready after %d closes", i+1)
		}
	}
	if !r.Ready() || r.Value() != 50 {
		t.Errorf("expected ready at 50, got %v %.2f", r.Ready(), r.Value())
	}
	r.Add(12)
	// gain (0.5+2)/2 = 1.25, loss 0.5/2 = 0.25, rs 5
	if got := r.Value(); math.Abs(got-100+100.0/6) > 1e-9 {
		t.Errorf("expected %.4f, got %.4f", 100-100.0/6, got)
	}
}

func TestWindowRange(t *testing.T) {
	c := ramp(10, 100, 1)
	high, low, err := WindowRange(c, 3)
	if err != nil {
		t.Fatal(err)
	}
	if high != 111 || low != 106 {
		t.Errorf("expected 111/106, got %.2f/%.2f", high, low)
	}
	high, low, _ = WindowRange(c, 0)
	if high != 111 || low != 99 {
		t.Errorf("expected full range 111/99, got %.2f/%.2f", high, low)
	}
	if _, _, err := WindowRange(nil, 5); !errors.Is(err, ErrEmptyWindow) {
		t.Errorf("expected ErrEmptyWindow, got %v", err)
	}
}

func TestRangePosition(t *testing.T) {
	cases := []struct {
		price, high, low, want float64
	}{
		{150, 200, 100, 0.5},
		{250, 200, 100, 1},
		{50, 200, 100, 0},
		{100, 100, 100, 0.5},
	}
	for _, tc := range cases {
		got, err := RangePosition(tc.price, tc.high, tc.low)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("RangePosition(%v, %v, %v) = %v, want %v", tc.price, tc.high, tc.low, got, tc.want)
		}
	}
	if _, err := RangePosition(1, 1, 2); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestCompute(t *testing.T) {
	window := ramp(40, 100, -1)
	ind := Compute(window, 59)
	if ind.SMAFast >= ind.SMASlow {
		t.Errorf("falling window should have fast SMA below slow: %.2f vs %.2f", ind.SMAFast, ind.SMASlow)
	}
	if ind.GreenRatio != 0 {
		t.Errorf("expected no green candles, got %.2f", ind.GreenRatio)
	}
	if ind.Position != 0 {
		t.Errorf("expected position 0 at the low end, got %.2f", ind.Position)
	}
	if ind.RSI != 0 {
		t.Errorf("expected RSI 0, got %.2f", ind.RSI)
	}
}

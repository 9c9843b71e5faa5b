package model

// WindowIndicators are computed over the closed reality window.
type WindowIndicators struct {
	CurrentPrice float64 `json:"current_price"`
	SMAFast      float64 `json:"sma_fast"`
	SMASlow      float64 `json:"sma_slow"`
	RSI          float64 `json:"rsi"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Position     float64 `json:"position"` // 0.0 ~ 1.0 within [Low, High]
	GreenRatio   float64 `json:"green_ratio"`
}

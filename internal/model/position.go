package model

// Side is the direction of the displayed position.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// PositionMark is a position valued at one price.
type PositionMark struct {
	Symbol string  `json:"symbol"`
	Side   Side    `json:"side"`
	Size   float64 `json:"size"`
	Entry  float64 `json:"entry"`
	Price  float64 `json:"price"`
	Value  float64 `json:"value"`
	PnL    float64 `json:"pnl"`
	PnLPct float64 `json:"pnl_pct"`
}

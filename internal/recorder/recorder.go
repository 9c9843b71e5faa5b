package recorder

import "CandleDream/internal/model"

// CandleEvent is one finalized candle of one series.
type CandleEvent struct {
	Session string
	Series  model.SeriesID
	Profile string
	Candle  model.Candle
}

// OverlayEvent records a dream toggle edge.
type OverlayEvent struct {
	Session      string
	Active       bool
	RealityPrice float64
	DreamPrice   float64 // zero on deactivation
}

// StatusSnapshot is a periodic status report.
type StatusSnapshot struct {
	Session    string
	Indicators model.WindowIndicators
	Position   model.PositionMark
	DreamOn    bool
}

// Recorder journals session history. Nothing is read back on start.
type Recorder interface {
	RecordCandle(evt *CandleEvent) error
	RecordOverlay(evt *OverlayEvent) error
	RecordStatus(snap *StatusSnapshot) error
	Close() error
}

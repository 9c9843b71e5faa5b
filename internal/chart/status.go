package chart

import (
	"log"

	"CandleDream/internal/calculator"
	"CandleDream/internal/model"
	"CandleDream/internal/recorder"
)

// Status is a point-in-time summary of the session.
type Status struct {
	Session      string                 `json:"session"`
	Symbol       string                 `json:"symbol"`
	Ticks        uint64                 `json:"ticks"`
	TickInCandle int                    `json:"tick_in_candle"`
	DreamActive  bool                   `json:"dream_active"`
	RealityPrice float64                `json:"reality_price"`
	DreamPrice   float64                `json:"dream_price,omitempty"`
	Profile      string                 `json:"profile"`
	Indicators   model.WindowIndicators `json:"indicators"`
	Position     model.PositionMark     `json:"position"`
}

// Status reports prices, indicators over the reality window and the position
// marked at the price of the series on top: dream while it is shown.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.reality.Buffer()
	price, _ := buf.Price()
	st := Status{
		Session:      s.id,
		Symbol:       s.opts.Symbol,
		Ticks:        s.ticks,
		TickInCandle: s.reality.State().TickCounter,
		RealityPrice: price,
		Profile:      s.reality.Profile().Name,
		Indicators:   calculator.Compute(buf.Closed(), price),
	}
	mark := price
	if s.dream != nil {
		st.DreamActive = true
		st.DreamPrice, _ = s.dream.Buffer().Price()
		mark = st.DreamPrice
	}
	st.Position = s.opts.Position.Mark(mark)
	return st
}

// RecordStatus journals the current status and returns it.
func (s *Session) RecordStatus() Status {
	st := s.Status()
	if err := s.opts.Recorder.RecordStatus(&recorder.StatusSnapshot{
		Session:    st.Session,
		Indicators: st.Indicators,
		Position:   st.Position,
		DreamOn:    st.DreamActive,
	}); err != nil {
		log.Printf("[ERROR] record status: %v", err)
	}
	return st
}

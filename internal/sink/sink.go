// Package sink defines where chart mutations go and keeps an in-memory
// mirror of everything sent.
package sink

import (
	"sync"

	"CandleDream/internal/model"
)

// Sink receives chart mutations. Implementations must not call back into
// the session that feeds them.
type Sink interface {
	SetSeries(id model.SeriesID, candles []model.Candle)
	Upsert(id model.SeriesID, c model.Candle)
	SetVisible(id model.SeriesID, visible bool)
	FitView()
	SetVisibleRange(from, to int64)
}

// Fanout forwards every call to each sink in order.
type Fanout []Sink

func (f Fanout) SetSeries(id model.SeriesID, candles []model.Candle) {
	for _, s := range f {
		s.SetSeries(id, candles)
	}
}

func (f Fanout) Upsert(id model.SeriesID, c model.Candle) {
	for _, s := range f {
		s.Upsert(id, c)
	}
}

func (f Fanout) SetVisible(id model.SeriesID, visible bool) {
	for _, s := range f {
		s.SetVisible(id, visible)
	}
}

func (f Fanout) FitView() {
	for _, s := range f {
		s.FitView()
	}
}

func (f Fanout) SetVisibleRange(from, to int64) {
	for _, s := range f {
		s.SetVisibleRange(from, to)
	}
}

// Range is a visible time window.
type Range struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Memory mirrors the chart state a renderer would show. It is safe for
// concurrent use.
type Memory struct {
	mu      sync.RWMutex
	series  map[model.SeriesID][]model.Candle
	visible map[model.SeriesID]bool
	view    *Range
	fits    int
	upserts int
	resets  int
}

// NewMemory returns an empty mirror.
func NewMemory() *Memory {
	return &Memory{
		series:  make(map[model.SeriesID][]model.Candle),
		visible: make(map[model.SeriesID]bool),
	}
}

func (m *Memory) SetSeries(id model.SeriesID, candles []model.Candle) {
	cp := make([]model.Candle, len(candles))
	copy(cp, candles)
	m.mu.Lock()
	m.series[id] = cp
	m.resets++
	if _, ok := m.visible[id]; !ok {
		m.visible[id] = true
	}
	m.mu.Unlock()
}

// Upsert replaces the last candle when the times match and appends otherwise.
func (m *Memory) Upsert(id model.SeriesID, c model.Candle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	s := m.series[id]
	if n := len(s); n > 0 && s[n-1].Time == c.Time {
		s[n-1] = c
		return
	}
	m.series[id] = append(s, c)
	if _, ok := m.visible[id]; !ok {
		m.visible[id] = true
	}
}

func (m *Memory) SetVisible(id model.SeriesID, visible bool) {
	m.mu.Lock()
	m.visible[id] = visible
	m.mu.Unlock()
}

func (m *Memory) FitView() {
	m.mu.Lock()
	m.fits++
	m.view = nil
	m.mu.Unlock()
}

func (m *Memory) SetVisibleRange(from, to int64) {
	m.mu.Lock()
	m.view = &Range{From: from, To: to}
	m.mu.Unlock()
}

// Series returns a copy of the candles last sent for id.
func (m *Memory) Series(id model.SeriesID) []model.Candle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.series[id]
	out := make([]model.Candle, len(s))
	copy(out, s)
	return out
}

func (m *Memory) Visible(id model.SeriesID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visible[id]
}

// View returns the explicit visible range, or false after a FitView.
func (m *Memory) View() (Range, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.view == nil {
		return Range{}, false
	}
	return *m.view, true
}

// Counts reports how many bulk replaces, upserts and fits were received.
func (m *Memory) Counts() (resets, upserts, fits int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resets, m.upserts, m.fits
}

// Replay sends the mirrored state to s. An empty mirror sends nothing.
func (m *Memory) Replay(s Sink) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.series) == 0 && m.view == nil {
		return
	}
	for _, id := range []model.SeriesID{model.Reality, model.Dream} {
		if c, ok := m.series[id]; ok {
			s.SetSeries(id, c)
			s.SetVisible(id, m.visible[id])
		}
	}
	if m.view != nil {
		s.SetVisibleRange(m.view.From, m.view.To)
	} else {
		s.FitView()
	}
}

// Package chart owns one chart session: the reality series, the optional
// dream series, the overlay toggle and everything pushed to the sink.
package chart

import (
	"fmt"
	"log"
	"sync"
	"time"

	"CandleDream/internal/engine"
	"CandleDream/internal/generator"
	"CandleDream/internal/model"
	"CandleDream/internal/overlay"
	"CandleDream/internal/position"
	"CandleDream/internal/random"
	"CandleDream/internal/recorder"
	"CandleDream/internal/series"
	"CandleDream/internal/sink"

	"github.com/google/uuid"
)

// Options configures a session. Zero values fall back to DefaultOptions.
type Options struct {
	Symbol      string
	StartPrice  float64
	SeedCount   int
	Capacity    int
	EndTime     int64 // unix seconds of the newest seeded candle; 0 means now
	Engine      engine.Config
	NotifyDelay time.Duration
	Profiles    model.ProfileSet

	Source   random.Source
	Sink     sink.Sink
	Recorder recorder.Recorder
	Position *position.Book

	// OnActivated runs on its own goroutine after each activation edge.
	OnActivated func(Status)
	// AfterFunc overrides the notification timer. It must not call f
	// synchronously.
	AfterFunc overlay.AfterFunc
}

// DefaultOptions seeds 50 bearish candles from 52500 into a 100-candle window.
func DefaultOptions() Options {
	return Options{
		Symbol:      position.DefaultSymbol,
		StartPrice:  52500,
		SeedCount:   50,
		Capacity:    series.DefaultCapacity,
		Engine:      engine.DefaultConfig(),
		NotifyDelay: overlay.DefaultDelay,
		Profiles:    model.DefaultProfiles(),
	}
}

func (o *Options) fill() {
	d := DefaultOptions()
	if o.Symbol == "" {
		o.Symbol = d.Symbol
	}
	if o.StartPrice == 0 {
		o.StartPrice = d.StartPrice
	}
	if o.SeedCount == 0 {
		o.SeedCount = d.SeedCount
	}
	if o.Capacity == 0 {
		o.Capacity = d.Capacity
	}
	if o.Engine == (engine.Config{}) {
		o.Engine = d.Engine
	}
	if o.NotifyDelay == 0 {
		o.NotifyDelay = d.NotifyDelay
	}
	if len(o.Profiles.Reality.Tiers) == 0 {
		o.Profiles = d.Profiles
	}
	if o.EndTime == 0 {
		o.EndTime = time.Now().Unix()
	}
	if o.Source == nil {
		o.Source = random.New(time.Now().UnixNano())
	}
	if o.Sink == nil {
		o.Sink = sink.NewMemory()
	}
	if o.Recorder == nil {
		o.Recorder = recorder.NewNoopRecorder()
	}
	if o.Position == nil {
		o.Position = position.DefaultBook()
	}
}

// Session is the single writer of both series. All methods are safe for
// concurrent use; tick, toggle and read paths serialize on one mutex.
type Session struct {
	mu      sync.Mutex
	id      string
	opts    Options
	reality *engine.Engine
	dream   *engine.Engine
	ctrl    *overlay.Controller
	ticks   uint64
}

// NewSession seeds reality, opens its first forming candle and pushes the
// initial chart to the sink with the dream series hidden.
func NewSession(opts Options) (*Session, error) {
	opts.fill()
	if err := opts.Profiles.Validate(); err != nil {
		return nil, fmt.Errorf("validate profiles: %w", err)
	}

	hist, err := generator.Seed(opts.Source, generator.Params{
		StartPrice: opts.StartPrice,
		Count:      opts.SeedCount,
		Step:       opts.Engine.Step,
		EndTime:    opts.EndTime,
	}, opts.Profiles.Seed)
	if err != nil {
		return nil, fmt.Errorf("seed reality: %w", err)
	}
	buf, err := series.New(opts.Capacity, hist)
	if err != nil {
		return nil, fmt.Errorf("build reality buffer: %w", err)
	}
	reality, err := engine.New(opts.Source, buf, opts.Profiles.Reality, opts.Engine)
	if err != nil {
		return nil, fmt.Errorf("build reality engine: %w", err)
	}

	s := &Session{id: uuid.NewString(), opts: opts, reality: reality}
	var copts []overlay.Option
	if opts.AfterFunc != nil {
		copts = append(copts, overlay.WithAfterFunc(opts.AfterFunc))
	}
	s.ctrl = overlay.New(overlay.Hooks{
		Activate:   s.showDream,
		Deactivate: s.hideDream,
		Activated:  s.activated,
	}, opts.NotifyDelay, copts...)

	forming := reality.Open()
	out := opts.Sink
	out.SetSeries(model.Reality, buf.Closed())
	out.Upsert(model.Reality, forming)
	out.SetVisible(model.Dream, false)
	out.FitView()

	log.Printf("[INFO] session %s seeded %d candles from %.2f", s.id, len(hist), opts.StartPrice)
	return s, nil
}

// ID is the session uuid stamped on journal rows.
func (s *Session) ID() string { return s.id }

// Tick advances reality and, while the overlay is on, dream.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	s.publish(model.Reality, s.reality, s.reality.Tick())
	if s.dream != nil {
		s.publish(model.Dream, s.dream, s.dream.Tick())
	}
}

func (s *Session) publish(id model.SeriesID, e *engine.Engine, m engine.Mutation) {
	out := s.opts.Sink
	if m.Closed != nil {
		if m.Trimmed {
			out.SetSeries(id, m.Window)
		} else {
			out.Upsert(id, *m.Closed)
		}
		if err := s.opts.Recorder.RecordCandle(&recorder.CandleEvent{
			Session: s.id, Series: id, Profile: e.Profile().Name, Candle: *m.Closed,
		}); err != nil {
			log.Printf("[ERROR] record candle: %v", err)
		}
	}
	out.Upsert(id, m.Forming)
}

// Activate turns the overlay on and reports whether this was an edge.
func (s *Session) Activate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Activate()
}

// Deactivate turns the overlay off and reports whether this was an edge.
func (s *Session) Deactivate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Deactivate()
}

// Toggle sets the overlay state.
func (s *Session) Toggle(active bool) bool {
	if active {
		return s.Activate()
	}
	return s.Deactivate()
}

// DreamActive reports whether the overlay is on.
func (s *Session) DreamActive() bool { return s.ctrl.Active() }

// showDream runs under s.mu from Activate.
func (s *Session) showDream() {
	dream, err := s.reality.Fork(s.opts.Profiles.Dream)
	if err != nil {
		log.Printf("[ERROR] fork dream: %v", err)
		return
	}
	if err := s.reality.SetProfile(s.opts.Profiles.RealityUnderOverlay); err != nil {
		log.Printf("[ERROR] switch reality profile: %v", err)
	}
	s.dream = dream

	out := s.opts.Sink
	buf := dream.Buffer()
	out.SetSeries(model.Dream, buf.Closed())
	if f, ok := buf.Forming(); ok {
		out.Upsert(model.Dream, f)
	}
	out.SetVisible(model.Dream, true)

	price, _ := s.reality.Buffer().Price()
	s.recordOverlay(true, price, price)
	log.Printf("[INFO] dream overlay on at %.2f", price)
}

// hideDream runs under s.mu from Deactivate.
func (s *Session) hideDream() {
	s.dream = nil
	if err := s.reality.SetProfile(s.opts.Profiles.Reality); err != nil {
		log.Printf("[ERROR] switch reality profile: %v", err)
	}
	out := s.opts.Sink
	out.SetVisible(model.Dream, false)
	out.SetSeries(model.Dream, nil)

	price, _ := s.reality.Buffer().Price()
	s.recordOverlay(false, price, 0)
	log.Println("[INFO] dream overlay off")
}

func (s *Session) recordOverlay(active bool, reality, dream float64) {
	if err := s.opts.Recorder.RecordOverlay(&recorder.OverlayEvent{
		Session: s.id, Active: active, RealityPrice: reality, DreamPrice: dream,
	}); err != nil {
		log.Printf("[ERROR] record overlay event: %v", err)
	}
}

func (s *Session) activated() {
	log.Println("[INFO] dream overlay activated")
	if s.opts.OnActivated != nil {
		s.opts.OnActivated(s.Status())
	}
}

// Snapshot returns the closed candles plus the forming one of a series, or
// nil when that series does not exist.
func (s *Session) Snapshot(id model.SeriesID) []model.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case id == model.Reality:
		return s.reality.Buffer().Candles()
	case id == model.Dream && s.dream != nil:
		return s.dream.Buffer().Candles()
	}
	return nil
}

// Project returns count candles continuing reality under the projection
// profile. Neither buffer is touched.
func (s *Session) Project(count int) ([]model.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := s.reality.Buffer()
	from, ok := buf.Forming()
	if !ok {
		from, _ = buf.Last()
	}
	return generator.Continue(s.opts.Source, from, count, s.opts.Engine.Step, s.opts.Profiles.Projection)
}

// ShowLast narrows the view to the newest n reality candles.
func (s *Session) ShowLast(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.reality.Buffer().Candles()
	if n <= 0 || n >= len(c) {
		s.opts.Sink.FitView()
		return
	}
	s.opts.Sink.SetVisibleRange(c[len(c)-n].Time, c[len(c)-1].Time)
}

// FitView resets the view to the whole window.
func (s *Session) FitView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Sink.FitView()
}

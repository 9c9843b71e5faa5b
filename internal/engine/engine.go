// Package engine advances one price series tick by tick.
//
// An Engine owns a series.Buffer and the generator state threaded across
// ticks. Each tick either reshapes the forming candle or, once
// TicksPerCandle ticks have elapsed, closes it and opens the next one at the
// closed candle's price. Reality and dream are the same Engine type running
// different model.BiasProfile values.
package engine

import (
	"errors"
	"fmt"
	"math"

	"CandleDream/internal/model"
	"CandleDream/internal/random"
	"CandleDream/internal/series"
)

// DefaultTicksPerCandle is how many ticks one live candle lasts.
const DefaultTicksPerCandle = 20

var (
	// ErrEmptyBuffer is returned by New for a buffer without history.
	ErrEmptyBuffer = errors.New("engine needs at least one closed candle")
	ErrConfig      = errors.New("invalid engine config")
)

// Config fixes the candle cadence.
type Config struct {
	TicksPerCandle int
	Step           int64 // seconds between candle times
}

// DefaultConfig closes a 2-second candle every 20 ticks.
func DefaultConfig() Config {
	return Config{TicksPerCandle: DefaultTicksPerCandle, Step: 2}
}

// State is the memory carried between ticks.
type State struct {
	Momentum    float64
	MicroTrend  float64
	TickCounter int
}

// Mutation describes what one tick changed.
type Mutation struct {
	// Closed is the finalized candle when the tick completed one.
	Closed *model.Candle
	// Forming is the in-progress candle after the tick.
	Forming model.Candle
	// Opened is set when Forming was started by this tick.
	Opened bool
	// Trimmed is set when closing evicted the oldest candle; Window then
	// holds the full closed window for a bulk replace.
	Trimmed bool
	Window  []model.Candle
}

// Engine advances one series. It is not safe for concurrent use.
type Engine struct {
	src     random.Source
	buf     *series.Buffer
	profile model.BiasProfile
	cfg     Config
	state   State
	anchor  float64 // price at construction; the floor is a share of it
}

// New builds an engine over buf. buf must already hold seeded history.
func New(src random.Source, buf *series.Buffer, profile model.BiasProfile, cfg Config) (*Engine, error) {
	if src == nil || buf == nil {
		return nil, fmt.Errorf("%w: nil source or buffer", ErrConfig)
	}
	if cfg.TicksPerCandle < 1 || cfg.Step <= 0 {
		return nil, fmt.Errorf("%w: ticks per candle %d, step %d", ErrConfig, cfg.TicksPerCandle, cfg.Step)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyBuffer
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	last, _ := buf.Last()
	return &Engine{src: src, buf: buf, profile: profile, cfg: cfg, anchor: last.Close}, nil
}

// Fork copies the engine's buffer into a new engine running profile. The
// fork gets fresh momentum and micro trend but keeps the tick phase, so both
// series close their candles on the same tick.
func (e *Engine) Fork(profile model.BiasProfile) (*Engine, error) {
	f, err := New(e.src, e.buf.Clone(), profile, e.cfg)
	if err != nil {
		return nil, err
	}
	f.anchor = e.anchor
	f.state = State{
		MicroTrend:  (e.src.Float64() - 0.5) * profile.Drift.MicroReseed,
		TickCounter: e.state.TickCounter,
	}
	return f, nil
}

// Accessors. The buffer is live; callers must not mutate it.
func (e *Engine) Buffer() *series.Buffer      { return e.buf }
func (e *Engine) Profile() model.BiasProfile { return e.profile }
func (e *Engine) State() State               { return e.state }

// Floor is the price below which bearish moves stop, zero when disabled.
func (e *Engine) Floor() float64 { return e.anchor * e.profile.Drift.FloorRatio }

// headroom scales a bearish move at price: 1 from twice the floor up, 0 at
// the floor and below.
func (e *Engine) headroom(price float64) float64 {
	floor := e.Floor()
	if floor <= 0 {
		return 1
	}
	return math.Max(0, math.Min(1, (price-floor)/floor))
}

// SetProfile swaps the bias profile; state carries over.
func (e *Engine) SetProfile(p model.BiasProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.profile = p
	return nil
}

// Open makes sure a forming candle exists and returns it.
func (e *Engine) Open() model.Candle {
	if f, ok := e.buf.Forming(); ok {
		return f
	}
	last, _ := e.buf.Last()
	return e.openFrom(last)
}

// Tick advances the series by one step.
func (e *Engine) Tick() Mutation {
	d := e.profile.Drift
	e.state.Momentum = e.state.Momentum*d.SessionDecay + d.SessionBias
	e.state.MicroTrend = e.state.MicroTrend*d.MicroDecay + (e.src.Float64()-0.5)*d.MicroScale
	e.state.TickCounter++

	forming, ok := e.buf.Forming()
	if !ok {
		last, _ := e.buf.Last()
		return Mutation{Forming: e.openFrom(last), Opened: true}
	}
	if e.state.TickCounter >= e.cfg.TicksPerCandle {
		return e.roll(forming)
	}
	return Mutation{Forming: e.form(forming)}
}

// form moves the close by a random step plus drift, then lets the wick on
// the side the price is heading grow faster than the opposite one.
func (e *Engine) form(c model.Candle) model.Candle {
	d, w := e.profile.Drift, e.profile.Wicks
	step := (e.src.Float64() - 0.5) * d.TickScale
	move := step + e.state.MicroTrend*d.MicroWeight + e.state.Momentum*d.MomentumWeight
	if move < 0 {
		move *= e.headroom(c.Close)
	}
	price := model.RoundPrice(c.Close + move)
	c.Close = price

	ext := math.Min(math.Abs(price-c.Open)*w.FormCap, w.FormBase+e.src.Float64()*w.FormJitter)
	if price > c.Open {
		c.High = max(c.High, model.RoundPrice(price+ext*w.FormLead))
		c.Low = min(c.Low, model.RoundPrice(c.Open-ext*w.FormTrail))
	} else {
		c.High = max(c.High, model.RoundPrice(c.Open+ext*w.FormTrail))
		c.Low = min(c.Low, model.RoundPrice(price-ext*w.FormLead))
	}

	model.MustHold(c.Validate())
	e.buf.SetForming(c)
	return c
}

func (e *Engine) roll(forming model.Candle) Mutation {
	closed := e.finalize(forming)
	evicted, err := e.buf.Append(closed)
	model.MustHold(err)

	e.state.MicroTrend = (e.src.Float64() - 0.5) * e.profile.Drift.MicroReseed
	m := Mutation{Closed: &closed, Forming: e.openFrom(closed), Opened: true}
	if evicted {
		m.Trimmed = true
		m.Window = e.buf.Closed()
	}
	return m
}

// finalize adds the closing wick: capped at a share of the body, dominant
// above a red candle and below a green one.
func (e *Engine) finalize(c model.Candle) model.Candle {
	w := e.profile.Wicks
	maxWick := c.Body() * w.FinalCap
	major := math.Min(maxWick*w.FinalDominant, w.FinalMajor.At(e.src.Float64()))
	minor := math.Min(maxWick*(1-w.FinalDominant), w.FinalMinor.At(e.src.Float64()))
	upper, lower := major, minor
	if c.Green() {
		upper, lower = minor, major
	}
	c.High = max(c.High, model.RoundPrice(c.BodyTop()+upper))
	c.Low = min(c.Low, model.RoundPrice(c.BodyBottom()-lower))
	model.MustHold(c.Validate())
	return c
}

// openFrom starts the next candle at prev's close with a body drawn from the
// profile's tiers and initial wicks on the rejection side.
func (e *Engine) openFrom(prev model.Candle) model.Candle {
	p := e.profile
	green := e.src.Float64() < p.GreenProb
	tier := p.PickTier(e.src.Float64())
	band := tier.Red
	sign := -1.0
	if green {
		band, sign = tier.Green, 1
	}
	size := band.At(e.src.Float64())
	if !green {
		size *= e.headroom(prev.Close)
	}

	c := model.Candle{Time: prev.Time + e.cfg.Step, Open: prev.Close}
	c.Close = model.RoundPrice(c.Open + sign*size)

	share := p.Wicks.OpenMin + e.src.Float64()*p.Wicks.OpenSpread
	major, minor := size*share*p.Wicks.OpenDominant, size*share*(1-p.Wicks.OpenDominant)
	upper, lower := major, minor
	if c.Green() {
		upper, lower = minor, major
	}
	c.High = model.RoundPrice(c.BodyTop() + upper)
	c.Low = model.RoundPrice(c.BodyBottom() - lower)

	model.MustHold(c.Validate())
	model.MustHold(prev.FollowedBy(c))
	e.buf.SetForming(c)
	e.state.TickCounter = 0
	return c
}

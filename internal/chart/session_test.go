package chart

import (
	"sync"
	"testing"
	"time"

	"CandleDream/internal/model"
	"CandleDream/internal/overlay"
	"CandleDream/internal/random"
	"CandleDream/internal/recorder"
	"CandleDream/internal/series"
	"CandleDream/internal/sink"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTimers struct {
	mu  sync.Mutex
	fns []func()
}

type stopper struct{}

func (stopper) Stop() bool { return true }

func (m *manualTimers) after(_ time.Duration, f func()) overlay.Timer {
	m.mu.Lock()
	m.fns = append(m.fns, f)
	m.mu.Unlock()
	return stopper{}
}

func (m *manualTimers) fireLast() {
	m.mu.Lock()
	f := m.fns[len(m.fns)-1]
	m.mu.Unlock()
	f()
}

type countingRecorder struct {
	recorder.NoopRecorder
	candles  map[model.SeriesID]int
	overlays []bool
	statuses int
}

func (r *countingRecorder) RecordCandle(evt *recorder.CandleEvent) error {
	r.candles[evt.Series]++
	return nil
}

func (r *countingRecorder) RecordOverlay(evt *recorder.OverlayEvent) error {
	r.overlays = append(r.overlays, evt.Active)
	return nil
}

func (r *countingRecorder) RecordStatus(_ *recorder.StatusSnapshot) error {
	r.statuses++
	return nil
}

type fixture struct {
	s      *Session
	mem    *sink.Memory
	timers *manualTimers
	rec    *countingRecorder
	fired  []Status
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	f := &fixture{
		mem:    sink.NewMemory(),
		timers: &manualTimers{},
		rec:    &countingRecorder{candles: map[model.SeriesID]int{}},
	}
	opts := DefaultOptions()
	opts.Capacity = capacity
	opts.EndTime = 1_700_000_000
	opts.Source = random.New(42)
	opts.Sink = f.mem
	opts.Recorder = f.rec
	opts.AfterFunc = f.timers.after
	opts.OnActivated = func(st Status) { f.fired = append(f.fired, st) }

	s, err := NewSession(opts)
	require.NoError(t, err)
	f.s = s
	return f
}

func (f *fixture) ticks(n int) {
	for i := 0; i < n; i++ {
		f.s.Tick()
	}
}

func TestNewSession_PushesSeededChart(t *testing.T) {
	f := newFixture(t, 100)
	got := f.mem.Series(model.Reality)
	require.Len(t, got, 51)
	assert.Equal(t, 52500.0, got[0].Open)
	assert.Equal(t, int64(1_700_000_000), got[49].Time)
	assert.Equal(t, got[49].Close, got[50].Open)
	assert.Equal(t, f.s.Snapshot(model.Reality), got)

	assert.False(t, f.mem.Visible(model.Dream))
	assert.Nil(t, f.s.Snapshot(model.Dream))
	_, _, fits := f.mem.Counts()
	assert.Equal(t, 1, fits)
	assert.NotEmpty(t, f.s.ID())
}

func TestNewSession_RejectsBadProfiles(t *testing.T) {
	opts := DefaultOptions()
	opts.Profiles.Dream.GreenProb = 3
	_, err := NewSession(opts)
	assert.Error(t, err)
}

func TestActivate_DreamStartsAsExactCopy(t *testing.T) {
	f := newFixture(t, 100)
	f.ticks(7)

	require.True(t, f.s.Activate())
	reality := f.s.Snapshot(model.Reality)
	dream := f.s.Snapshot(model.Dream)
	assert.Equal(t, reality, dream)
	assert.Equal(t, reality, f.mem.Series(model.Dream))
	assert.True(t, f.mem.Visible(model.Dream))
	assert.Equal(t, "reality-overlay", f.s.Status().Profile)

	f.s.Tick()
	assert.NotEqual(t, f.s.Snapshot(model.Reality), f.s.Snapshot(model.Dream))
}

func TestActivate_NotifiesOncePerEdge(t *testing.T) {
	f := newFixture(t, 100)

	assert.True(t, f.s.Activate())
	assert.False(t, f.s.Activate())
	assert.False(t, f.s.Toggle(true))
	require.Len(t, f.timers.fns, 1)
	assert.Empty(t, f.fired)

	f.timers.fireLast()
	require.Len(t, f.fired, 1)
	assert.True(t, f.fired[0].DreamActive)

	assert.True(t, f.s.Deactivate())
	assert.False(t, f.s.Deactivate())
	assert.True(t, f.s.Activate())
	f.timers.fireLast()
	assert.Len(t, f.fired, 2)
	assert.Equal(t, []bool{true, false, true}, f.rec.overlays)
}

func TestDeactivate_DiscardsDream(t *testing.T) {
	f := newFixture(t, 100)
	f.s.Activate()
	f.ticks(30)
	f.s.Deactivate()

	assert.Nil(t, f.s.Snapshot(model.Dream))
	assert.Empty(t, f.mem.Series(model.Dream))
	assert.False(t, f.mem.Visible(model.Dream))
	assert.False(t, f.s.DreamActive())
	assert.Equal(t, "reality", f.s.Status().Profile)

	// a fresh activation clones the current reality again
	f.ticks(5)
	f.s.Activate()
	assert.Equal(t, f.s.Snapshot(model.Reality), f.s.Snapshot(model.Dream))
}

func TestTick_SinkMirrorsBuffers(t *testing.T) {
	f := newFixture(t, 60)
	f.s.Activate()
	f.ticks(20 * 40)

	for _, id := range []model.SeriesID{model.Reality, model.Dream} {
		snap := f.s.Snapshot(id)
		assert.Equal(t, snap, f.mem.Series(id), string(id))
		assert.LessOrEqual(t, len(snap), 61)
		for i := 1; i < len(snap); i++ {
			require.NoError(t, snap[i-1].FollowedBy(snap[i]), "%s %d", id, i)
			require.NoError(t, snap[i].Validate())
		}
	}
	resets, _, _ := f.mem.Counts()
	assert.Greater(t, resets, 2)
	assert.Equal(t, 40, f.rec.candles[model.Reality])
	assert.Equal(t, 40, f.rec.candles[model.Dream])
}

func TestTick_DreamRisesRealityFalls(t *testing.T) {
	f := newFixture(t, 100)
	start := f.s.Status().RealityPrice
	f.s.Activate()
	f.ticks(20 * 30)

	st := f.s.Status()
	assert.Less(t, st.RealityPrice, start)
	assert.Greater(t, st.DreamPrice, start)
	assert.Equal(t, st.DreamPrice, st.Position.Price)
	assert.Greater(t, st.Position.PnL, 0.0)
}

func TestProject_LeavesBuffersAlone(t *testing.T) {
	f := newFixture(t, 100)
	f.ticks(3)
	before := f.s.Snapshot(model.Reality)

	proj, err := f.s.Project(12)
	require.NoError(t, err)
	require.Len(t, proj, 12)
	require.NoError(t, before[len(before)-1].FollowedBy(proj[0]))
	assert.Equal(t, before, f.s.Snapshot(model.Reality))

	_, err = f.s.Project(0)
	assert.Error(t, err)
}

func TestShowLast_SetsRange(t *testing.T) {
	f := newFixture(t, 100)
	f.s.ShowLast(10)
	r, ok := f.mem.View()
	require.True(t, ok)
	snap := f.s.Snapshot(model.Reality)
	assert.Equal(t, snap[len(snap)-10].Time, r.From)
	assert.Equal(t, snap[len(snap)-1].Time, r.To)

	f.s.ShowLast(0)
	_, ok = f.mem.View()
	assert.False(t, ok)
}

func TestRecordStatus(t *testing.T) {
	f := newFixture(t, 100)
	st := f.s.RecordStatus()
	assert.Equal(t, 1, f.rec.statuses)
	assert.Equal(t, f.s.ID(), st.Session)
	assert.Equal(t, st.RealityPrice, st.Position.Price)
	assert.NotZero(t, st.Indicators.SMASlow)
}

func TestTick_RealityStaysPositiveForHours(t *testing.T) {
	f := newFixture(t, series.DefaultCapacity)
	// three hours at 100ms per tick, then one more with the overlay on
	f.ticks(108000)
	st := f.s.Status()
	require.Greater(t, st.RealityPrice, 0.0)

	require.True(t, f.s.Activate())
	f.ticks(36000)
	st = f.s.Status()
	assert.Greater(t, st.RealityPrice, 0.0)
	assert.Greater(t, st.DreamPrice, st.RealityPrice)

	proj, err := f.s.Project(30)
	require.NoError(t, err)
	assert.Len(t, proj, 30)
}

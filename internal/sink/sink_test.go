package sink

import (
	"testing"

	"CandleDream/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestMemory_UpsertReplacesSameTime(t *testing.T) {
	m := NewMemory()
	m.SetSeries(model.Reality, []model.Candle{{Time: 2, Open: 1, High: 1, Low: 1, Close: 1}})

	m.Upsert(model.Reality, model.Candle{Time: 4, Open: 1, High: 3, Low: 1, Close: 2})
	m.Upsert(model.Reality, model.Candle{Time: 4, Open: 1, High: 5, Low: 1, Close: 4})

	got := m.Series(model.Reality)
	assert.Len(t, got, 2)
	assert.Equal(t, 4.0, got[1].Close)

	resets, upserts, _ := m.Counts()
	assert.Equal(t, 1, resets)
	assert.Equal(t, 2, upserts)
}

func TestMemory_SetSeriesCopies(t *testing.T) {
	m := NewMemory()
	in := []model.Candle{{Time: 1, Open: 1, High: 1, Low: 1, Close: 1}}
	m.SetSeries(model.Dream, in)
	in[0].Close = 9
	assert.Equal(t, 1.0, m.Series(model.Dream)[0].Close)
}

func TestMemory_VisibilityAndView(t *testing.T) {
	m := NewMemory()
	m.SetSeries(model.Dream, nil)
	assert.True(t, m.Visible(model.Dream))
	m.SetVisible(model.Dream, false)
	assert.False(t, m.Visible(model.Dream))

	m.SetVisibleRange(10, 20)
	r, ok := m.View()
	assert.True(t, ok)
	assert.Equal(t, Range{From: 10, To: 20}, r)

	m.FitView()
	_, ok = m.View()
	assert.False(t, ok)
}

func TestFanout_ReplayReachesEverySink(t *testing.T) {
	src := NewMemory()
	src.SetSeries(model.Reality, []model.Candle{{Time: 1, Open: 1, High: 1, Low: 1, Close: 1}})
	src.SetSeries(model.Dream, []model.Candle{{Time: 1, Open: 1, High: 2, Low: 1, Close: 2}})
	src.SetVisible(model.Dream, false)

	a, b := NewMemory(), NewMemory()
	src.Replay(Fanout{a, b})

	for _, dst := range []*Memory{a, b} {
		assert.Equal(t, src.Series(model.Reality), dst.Series(model.Reality))
		assert.Equal(t, src.Series(model.Dream), dst.Series(model.Dream))
		assert.False(t, dst.Visible(model.Dream))
		_, _, fits := dst.Counts()
		assert.Equal(t, 1, fits)
	}
}

func TestMemory_ReplayEmptySendsNothing(t *testing.T) {
	dst := NewMemory()
	NewMemory().Replay(dst)
	resets, upserts, fits := dst.Counts()
	assert.Zero(t, resets+upserts+fits)

	src := NewMemory()
	src.SetVisibleRange(3, 9)
	src.Replay(dst)
	r, ok := dst.View()
	assert.True(t, ok)
	assert.Equal(t, Range{From: 3, To: 9}, r)
}

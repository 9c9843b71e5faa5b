package recorder

import (
	"path/filepath"
	"testing"

	"CandleDream/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func count(t *testing.T, r *SQLiteRecorder, table string) int {
	t.Helper()
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSQLiteRecorder_Journal(t *testing.T) {
	r := openTemp(t)

	c := model.Candle{Time: 1_700_000_000, Open: 52500, High: 52510, Low: 52470, Close: 52480}
	for _, id := range []model.SeriesID{model.Reality, model.Dream} {
		if err := r.RecordCandle(&CandleEvent{Session: "s1", Series: id, Profile: string(id), Candle: c}); err != nil {
			t.Fatalf("record candle: %v", err)
		}
	}
	if err := r.RecordOverlay(&OverlayEvent{Session: "s1", Active: true, RealityPrice: 52480, DreamPrice: 52480}); err != nil {
		t.Fatalf("record overlay: %v", err)
	}
	if err := r.RecordStatus(&StatusSnapshot{Session: "s1", DreamOn: true}); err != nil {
		t.Fatalf("record status: %v", err)
	}

	if n := count(t, r, "candles"); n != 2 {
		t.Errorf("expected 2 candles, got %d", n)
	}
	if n := count(t, r, "overlay_events"); n != 1 {
		t.Errorf("expected 1 overlay event, got %d", n)
	}
	if n := count(t, r, "status_snapshots"); n != 1 {
		t.Errorf("expected 1 status snapshot, got %d", n)
	}

	var series string
	var closePrice float64
	if err := r.db.QueryRow("SELECT series, close FROM candles WHERE series = 'dream'").Scan(&series, &closePrice); err != nil {
		t.Fatal(err)
	}
	if closePrice != 52480 {
		t.Errorf("expected close 52480, got %.2f", closePrice)
	}
}

func TestSQLiteRecorder_MigrateTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 2; i++ {
		r, err := NewSQLiteRecorder(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		r.Close()
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordCandle(&CandleEvent{}); err != nil {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}

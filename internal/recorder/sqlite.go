package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder journals candles and overlay events to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			session     TEXT NOT NULL,
			series      TEXT NOT NULL,
			profile     TEXT,
			time        INTEGER NOT NULL,
			open        REAL NOT NULL,
			high        REAL NOT NULL,
			low         REAL NOT NULL,
			close       REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candles_session ON candles(session, series, time)`,
		`CREATE TABLE IF NOT EXISTS overlay_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at   INTEGER NOT NULL,
			session       TEXT NOT NULL,
			active        INTEGER NOT NULL,
			reality_price REAL,
			dream_price   REAL
		)`,
		`CREATE TABLE IF NOT EXISTS status_snapshots (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at   INTEGER NOT NULL,
			session       TEXT NOT NULL,
			current_price REAL,
			sma_fast      REAL,
			sma_slow      REAL,
			rsi           REAL,
			window_high   REAL,
			window_low    REAL,
			position      REAL,
			green_ratio   REAL,
			pnl           REAL,
			pnl_pct       REAL,
			dream_on      INTEGER
		)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCandle(evt *CandleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := evt.Candle
	_, err := r.db.Exec(`INSERT INTO candles
		(recorded_at, session, series, profile, time, open, high, low, close)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Session, string(evt.Series), evt.Profile,
		c.Time, c.Open, c.High, c.Low, c.Close,
	)
	return err
}

func (r *SQLiteRecorder) RecordOverlay(evt *OverlayEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO overlay_events
		(recorded_at, session, active, reality_price, dream_price)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Session, evt.Active, evt.RealityPrice, evt.DreamPrice,
	)
	return err
}

func (r *SQLiteRecorder) RecordStatus(snap *StatusSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ind, pos := snap.Indicators, snap.Position
	_, err := r.db.Exec(`INSERT INTO status_snapshots
		(recorded_at, session, current_price, sma_fast, sma_slow, rsi,
		 window_high, window_low, position, green_ratio, pnl, pnl_pct, dream_on)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), snap.Session, ind.CurrentPrice, ind.SMAFast, ind.SMASlow, ind.RSI,
		ind.High, ind.Low, ind.Position, ind.GreenRatio, pos.PnL, pos.PnLPct, snap.DreamOn,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

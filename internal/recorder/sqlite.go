package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists dashboard runs to a SQLite database.
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
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			years         INTEGER,
			provider      TEXT,
			row_count     INTEGER,
			current_price REAL,
			change        REAL,
			percent       REAL,
			last_forecast REAL,
			trend         TEXT,
			duration_ms   INTEGER,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON forecast_runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON forecast_runs(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO forecast_runs
		(timestamp, symbol, years, provider, row_count, current_price, change, percent,
		 last_forecast, trend, duration_ms, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		ts.Unix(), evt.Symbol, evt.Years, evt.Provider, evt.Rows,
		evt.CurrentPrice, evt.Change, evt.Percent,
		evt.LastForecast, evt.Trend, evt.Duration.Milliseconds(), evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) Recent(limit int) ([]RunEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, symbol, years, provider, row_count,
		current_price, change, percent, last_forecast, trend, duration_ms, error
		FROM forecast_runs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunEvent
	for rows.Next() {
		var (
			evt RunEvent
			ts  int64
			ms  int64
		)
		if err := rows.Scan(&ts, &evt.Symbol, &evt.Years, &evt.Provider, &evt.Rows,
			&evt.CurrentPrice, &evt.Change, &evt.Percent, &evt.LastForecast,
			&evt.Trend, &ms, &evt.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		evt.Timestamp = time.Unix(ts, 0)
		evt.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

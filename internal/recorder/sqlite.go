package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
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

	// WAL mode so dashboards can read while the pipeline writes.
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
		`CREATE TABLE IF NOT EXISTS daily_updates (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			date        TEXT NOT NULL,
			source_date TEXT,
			base        TEXT,
			source      TEXT,
			num_rates   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_updates_ts ON daily_updates(timestamp)`,

		`CREATE TABLE IF NOT EXISTS backfill_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			start_date  TEXT NOT NULL,
			end_date    TEXT NOT NULL,
			chunks      INTEGER,
			rows_merged INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backfill_runs_ts ON backfill_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordDailyUpdate(evt *DailyUpdateEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO daily_updates
		(timestamp, date, source_date, base, source, num_rates)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Date, evt.SourceDate, evt.Base, evt.Source, evt.NumRates,
	)
	return err
}

func (r *SQLiteRecorder) RecordBackfillRun(evt *BackfillRunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO backfill_runs
		(timestamp, start_date, end_date, chunks, rows_merged, duration_ms)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.StartDate, evt.EndDate,
		evt.Chunks, evt.RowsMerged, evt.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

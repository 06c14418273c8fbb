package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"MarketPulse/internal/logging"
)

// SQLiteRecorder persists task runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.SugaredLogger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.SugaredLogger) (*SQLiteRecorder, error) {
	log = logging.OrNop(log)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS task_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			task        TEXT NOT NULL,
			started     INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			symbols     INTEGER,
			periods     INTEGER,
			cached      INTEGER,
			fetched     INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_task_runs_started ON task_runs(started)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(ctx context.Context, evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO task_runs
		(task, started, duration_ms, symbols, periods, cached, fetched, error)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.Task, evt.Started.UnixMilli(), evt.Duration.Milliseconds(),
		evt.Symbols, evt.Periods, evt.Cached, evt.Fetched, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecentRuns(ctx context.Context, limit int) ([]RunEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT task, started, duration_ms, symbols, periods, cached, fetched, error
		FROM task_runs ORDER BY started DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunEvent
	for rows.Next() {
		var evt RunEvent
		var started, durMs int64
		var errText sql.NullString
		if err := rows.Scan(&evt.Task, &started, &durMs, &evt.Symbols, &evt.Periods,
			&evt.Cached, &evt.Fetched, &errText); err != nil {
			return nil, err
		}
		evt.Started = time.UnixMilli(started).UTC()
		evt.Duration = time.Duration(durMs) * time.Millisecond
		evt.Error = errText.String
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"MarketPulse/internal/logging"
)

// SQLiteStore persists cache rows, stock lists and holdings to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.SugaredLogger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log *zap.SugaredLogger) (*SQLiteStore, error) {
	log = logging.OrNop(log)
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stocks (
			symbol         TEXT NOT NULL,
			start_date     TEXT NOT NULL,
			end_date       TEXT NOT NULL,
			percent_change REAL NOT NULL,
			created_at     TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// Databases written before the unique key may hold duplicates; keep the latest row.
		`DELETE FROM stocks WHERE rowid NOT IN (
			SELECT MAX(rowid) FROM stocks GROUP BY symbol, start_date, end_date
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_stocks_key ON stocks(symbol, start_date, end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_stocks_window ON stocks(start_date, end_date)`,

		`CREATE TABLE IF NOT EXISTS stock_lists (
			list_name TEXT PRIMARY KEY,
			tickers   TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS holdings (
			id             TEXT PRIMARY KEY,
			ticker         TEXT NOT NULL,
			shares         TEXT NOT NULL,
			purchase_date  TEXT NOT NULL,
			purchase_price TEXT NOT NULL,
			created_at     TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	s.log.Info("closing sqlite store")
	return s.db.Close()
}

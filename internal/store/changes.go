package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MarketPulse/internal/model"
)

// Lookup returns cached percent changes for symbols under the exact window.
func (s *SQLiteStore) Lookup(ctx context.Context, symbols []string, start, end time.Time) (map[string]float64, error) {
	out := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(symbols)+2)
	args = append(args, start.Format(model.DateLayout), end.Format(model.DateLayout))
	for _, sym := range symbols {
		args = append(args, sym)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(symbols)), ",")

	rows, err := s.db.QueryContext(ctx, `SELECT symbol, percent_change FROM stocks
		WHERE start_date = ? AND end_date = ? AND symbol IN (`+placeholders+`)
		ORDER BY rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup changes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sym string
		var pct float64
		if err := rows.Scan(&sym, &pct); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		if pct != 0 {
			out[sym] = pct
		}
	}
	return out, rows.Err()
}

// Store inserts non-zero changes. A key that already exists keeps its value.
func (s *SQLiteStore) Store(ctx context.Context, changes map[string]float64, start, end time.Time) error {
	if len(changes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO stocks
		(symbol, start_date, end_date, percent_change) VALUES (?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare store: %w", err)
	}
	defer stmt.Close()

	from, to := start.Format(model.DateLayout), end.Format(model.DateLayout)
	for sym, pct := range changes {
		if pct == 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, sym, from, to, pct); err != nil {
			return fmt.Errorf("store %s: %w", sym, err)
		}
	}
	return tx.Commit()
}

// Purge deletes the cached rows of one window.
func (s *SQLiteStore) Purge(ctx context.Context, start, end time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM stocks WHERE start_date = ? AND end_date = ?`,
		start.Format(model.DateLayout), end.Format(model.DateLayout))
	if err != nil {
		return 0, fmt.Errorf("purge window: %w", err)
	}
	return res.RowsAffected()
}

// Stats counts cached rows, distinct symbols and distinct windows.
func (s *SQLiteStore) Stats(ctx context.Context) (*CacheStats, error) {
	var st CacheStats
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT symbol),
		COUNT(DISTINCT start_date || '/' || end_date) FROM stocks`).Scan(&st.Rows, &st.Symbols, &st.Windows)
	if err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}
	return &st, nil
}

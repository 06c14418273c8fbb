package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"MarketPulse/internal/model"
)

// Presets are built-in lists available without saving them first.
var Presets = map[string][]string{
	"default": {"AAPL", "GOOGL", "AMZN", "MSFT", "TSLA", "META"},
	"soxx": {"AVGO", "NVDA", "AMD", "AMAT", "QCOM", "LRCX", "TSM", "KLAC", "INTC", "MRVL",
		"MU", "MPWR", "TXN", "ASML", "NXPI", "ADI", "MCHP", "ON", "TER", "ENTG",
		"SWKS", "QRVO", "STM", "MKSI", "ASX", "LSCC", "RMBS", "UMC", "ACLS", "WOLF", "8035.T"},
}

// NormalizeTickers upper-cases, trims and de-duplicates tickers, keeping order.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		for _, part := range strings.Split(t, ",") {
			sym := strings.ToUpper(strings.TrimSpace(part))
			if sym == "" || seen[sym] {
				continue
			}
			seen[sym] = true
			out = append(out, sym)
		}
	}
	return out
}

// SaveList creates or replaces a named list.
func (s *SQLiteStore) SaveList(ctx context.Context, name string, tickers []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("list name is required")
	}
	tickers = NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return errors.New("list needs at least one ticker")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT INTO stock_lists (list_name, tickers) VALUES (?, ?)
		ON CONFLICT(list_name) DO UPDATE SET tickers = excluded.tickers`,
		name, strings.Join(tickers, ","))
	if err != nil {
		return fmt.Errorf("save list %q: %w", name, err)
	}
	return nil
}

// LoadList returns a saved list, falling back to the presets.
func (s *SQLiteStore) LoadList(ctx context.Context, name string) (*model.StockList, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT tickers FROM stock_lists WHERE list_name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		if preset, ok := Presets[strings.ToLower(name)]; ok {
			return &model.StockList{Name: name, Tickers: append([]string(nil), preset...)}, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrListNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load list %q: %w", name, err)
	}
	return &model.StockList{Name: name, Tickers: NormalizeTickers([]string{raw})}, nil
}

// ListNames returns saved list names, sorted.
func (s *SQLiteStore) ListNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT list_name FROM stock_lists ORDER BY list_name`)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	sort.Strings(names)
	return names, rows.Err()
}

// DeleteList removes a saved list.
func (s *SQLiteStore) DeleteList(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM stock_lists WHERE list_name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete list %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrListNotFound, name)
	}
	return nil
}

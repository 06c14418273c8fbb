package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"MarketPulse/internal/model"
)

// AddHolding inserts a holding. The caller assigns the id.
func (s *SQLiteStore) AddHolding(ctx context.Context, h model.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO holdings
		(id, ticker, shares, purchase_date, purchase_price) VALUES (?,?,?,?,?)`,
		h.ID, h.Ticker, h.Shares.String(), h.PurchaseDate.Format(model.DateLayout), h.PurchasePrice.String())
	if err != nil {
		return fmt.Errorf("add holding %s: %w", h.Ticker, err)
	}
	return nil
}

// RemoveHolding deletes a holding by id.
func (s *SQLiteStore) RemoveHolding(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM holdings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove holding %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrHoldingNotFound, id)
	}
	return nil
}

// Holdings returns all holdings in insertion order.
func (s *SQLiteStore) Holdings(ctx context.Context) ([]model.Holding, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, ticker, shares, purchase_date, purchase_price
		FROM holdings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	var out []model.Holding
	for rows.Next() {
		var h model.Holding
		var shares, date, price string
		if err := rows.Scan(&h.ID, &h.Ticker, &shares, &date, &price); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		if h.Shares, err = decimal.NewFromString(shares); err != nil {
			return nil, fmt.Errorf("holding %s shares: %w", h.ID, err)
		}
		if h.PurchasePrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("holding %s price: %w", h.ID, err)
		}
		if h.PurchaseDate, err = time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("holding %s date: %w", h.ID, err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

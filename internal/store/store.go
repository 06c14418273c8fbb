// Package store persists cached percent changes, saved stock lists and
// portfolio holdings.
package store

import (
	"context"
	"errors"
	"time"

	"MarketPulse/internal/model"
)

var (
	// ErrListNotFound is returned when a named stock list does not exist.
	ErrListNotFound = errors.New("stock list not found")
	// ErrHoldingNotFound is returned when a holding id does not exist.
	ErrHoldingNotFound = errors.New("holding not found")
)

// ChangeCache maps (symbol, start, end) to a previously computed percent change.
type ChangeCache interface {
	// Lookup returns the cached changes for the subset of symbols present
	// under the exact window. Missing symbols are absent from the map.
	Lookup(ctx context.Context, symbols []string, start, end time.Time) (map[string]float64, error)
	// Store persists non-zero changes for the window. Existing keys keep
	// their first stored value.
	Store(ctx context.Context, changes map[string]float64, start, end time.Time) error
}

// ListStore persists named stock lists.
type ListStore interface {
	SaveList(ctx context.Context, name string, tickers []string) error
	LoadList(ctx context.Context, name string) (*model.StockList, error)
	ListNames(ctx context.Context) ([]string, error)
	DeleteList(ctx context.Context, name string) error
}

// HoldingStore persists portfolio holdings.
type HoldingStore interface {
	AddHolding(ctx context.Context, h model.Holding) error
	RemoveHolding(ctx context.Context, id string) error
	Holdings(ctx context.Context) ([]model.Holding, error)
}

// CacheStats summarises the change cache.
type CacheStats struct {
	Rows    int `json:"rows"`
	Symbols int `json:"symbols"`
	Windows int `json:"windows"`
}

var (
	_ ChangeCache  = (*SQLiteStore)(nil)
	_ ListStore    = (*SQLiteStore)(nil)
	_ HoldingStore = (*SQLiteStore)(nil)
	_ ChangeCache  = (*MemoryCache)(nil)
)

// Package portfolio tracks holdings and values them at the latest close.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"MarketPulse/internal/collector"
	"MarketPulse/internal/logging"
	"MarketPulse/internal/model"
	"MarketPulse/internal/store"
)

// priceLookback is how far back the latest close is searched for.
const priceLookback = 10 * 24 * time.Hour

var hundred = decimal.NewFromInt(100)

// Manager handles holding bookkeeping and valuation.
type Manager struct {
	Store  store.HoldingStore
	Prices collector.HistorySource
	Log    *zap.SugaredLogger
	Now    func() time.Time
}

// NewManager creates a Manager.
func NewManager(st store.HoldingStore, prices collector.HistorySource, log *zap.SugaredLogger) *Manager {
	return &Manager{Store: st, Prices: prices, Log: logging.OrNop(log), Now: time.Now}
}

// Add records a new holding and returns it with a fresh id.
func (m *Manager) Add(ctx context.Context, ticker string, shares, price decimal.Decimal, purchased time.Time) (*model.Holding, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, errors.New("ticker is required")
	}
	if !shares.IsPositive() {
		return nil, errors.New("shares must be positive")
	}
	if price.IsNegative() {
		return nil, errors.New("purchase price must not be negative")
	}

	h := model.Holding{
		ID:            uuid.NewString(),
		Ticker:        ticker,
		Shares:        shares,
		PurchaseDate:  purchased,
		PurchasePrice: price,
	}
	if err := m.Store.AddHolding(ctx, h); err != nil {
		return nil, err
	}
	m.Log.Infof("holding added: %s %s @ %s", h.Ticker, h.Shares, h.PurchasePrice)
	return &h, nil
}

// Remove deletes a holding by id.
func (m *Manager) Remove(ctx context.Context, id string) error {
	return m.Store.RemoveHolding(ctx, id)
}

// List returns all holdings.
func (m *Manager) List(ctx context.Context) ([]model.Holding, error) {
	return m.Store.Holdings(ctx)
}

// Import adds every holding from a JSON file, assigning ids where missing.
func (m *Manager) Import(ctx context.Context, filePath string) (int, error) {
	holdings, err := LoadHoldings(filePath)
	if err != nil {
		return 0, err
	}
	for i, h := range holdings {
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		h.Ticker = strings.ToUpper(strings.TrimSpace(h.Ticker))
		if err := m.Store.AddHolding(ctx, h); err != nil {
			return i, err
		}
	}
	return len(holdings), nil
}

// Export writes all holdings to a JSON file.
func (m *Manager) Export(ctx context.Context, filePath string) (int, error) {
	holdings, err := m.Store.Holdings(ctx)
	if err != nil {
		return 0, err
	}
	return len(holdings), SaveHoldings(filePath, holdings)
}

// latestClose returns the most recent close of ticker at or before now.
func (m *Manager) latestClose(ctx context.Context, ticker string, now time.Time) (decimal.Decimal, error) {
	bars, err := m.Prices.FetchDailyBars(ctx, ticker, now.Add(-priceLookback), now)
	if err != nil {
		return decimal.Zero, err
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Close > 0 {
			return decimal.NewFromFloat(bars[i].Close), nil
		}
	}
	return decimal.Zero, fmt.Errorf("%s: %w", ticker, collector.ErrNoData)
}

// Performance values every holding at its latest close. Holdings whose price
// cannot be fetched are listed in Unpriced and left out of the totals.
func (m *Manager) Performance(ctx context.Context) (*model.PortfolioSummary, error) {
	holdings, err := m.Store.Holdings(ctx)
	if err != nil {
		return nil, err
	}

	now := m.Now()
	sum := &model.PortfolioSummary{ValuedAt: now}
	prices := make(map[string]decimal.Decimal)
	failed := make(map[string]bool)
	pctTotal := decimal.Zero

	for _, h := range holdings {
		price, ok := prices[h.Ticker]
		if !ok && !failed[h.Ticker] {
			p, err := m.latestClose(ctx, h.Ticker, now)
			if err != nil {
				m.Log.Warnf("portfolio: price for %s unavailable: %v", h.Ticker, err)
				failed[h.Ticker] = true
			} else {
				prices[h.Ticker] = p
				price, ok = p, true
			}
		}
		if !ok {
			sum.Unpriced = append(sum.Unpriced, h.Ticker)
			continue
		}

		perf := valueHolding(h, price)
		sum.Holdings = append(sum.Holdings, perf)
		sum.TotalCost = sum.TotalCost.Add(perf.CostBasis)
		sum.TotalValue = sum.TotalValue.Add(perf.CurrentValue)
		pctTotal = pctTotal.Add(perf.PercentChange)
	}

	sum.TotalGainLoss = sum.TotalValue.Sub(sum.TotalCost)
	if n := len(sum.Holdings); n > 0 {
		sum.AvgPercentChange = pctTotal.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	return sum, nil
}

func valueHolding(h model.Holding, price decimal.Decimal) model.HoldingPerformance {
	cost := h.Shares.Mul(h.PurchasePrice).Round(2)
	value := h.Shares.Mul(price).Round(2)
	gain := value.Sub(cost)
	pct := decimal.Zero
	if !cost.IsZero() {
		pct = gain.Div(cost).Mul(hundred).Round(2)
	}
	return model.HoldingPerformance{
		Holding:       h,
		CurrentPrice:  price.Round(2),
		CostBasis:     cost,
		CurrentValue:  value,
		GainLoss:      gain,
		PercentChange: pct,
	}
}

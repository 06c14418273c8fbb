package collector

import (
	"context"
	"sync"
	"time"

	"MarketPulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without explicit bars get a synthetic weekday series when Price > 0.
type MockFetcher struct {
	Price  float64
	Bars   map[string][]model.OHLCV
	Quotes map[string]model.Fundamentals
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

// NewMockFetcher returns a mock that synthesizes bars around 100.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Price:  100,
		Bars:   make(map[string][]model.OHLCV),
		Quotes: make(map[string]model.Fundamentals),
		Errors: make(map[string]error),
	}
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns the symbols fetched so far, in call order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// ResetCalls clears the call log.
func (m *MockFetcher) ResetCalls() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return inWindow(bars, start, end), nil
	}
	if m.Price <= 0 {
		return nil, nil
	}
	return generateMockBars(symbol, m.Price, start, end), nil
}

func (m *MockFetcher) FetchWindow(ctx context.Context, symbol string, start, end time.Time) (model.Window, error) {
	return windowFromHistory(ctx, m, symbol, start, end)
}

// Fundamentals returns the configured quote, or a synthetic one when Price > 0.
func (m *MockFetcher) Fundamentals(ctx context.Context, symbol string) (model.Fundamentals, error) {
	if err := ctx.Err(); err != nil {
		return model.Fundamentals{}, err
	}
	if err, ok := m.Errors[symbol]; ok {
		return model.Fundamentals{}, err
	}
	if q, ok := m.Quotes[symbol]; ok {
		q.Symbol = symbol
		return q, nil
	}
	if m.Price <= 0 {
		return model.Fundamentals{}, ErrNoData
	}

	seed := symbolSeed(symbol)
	price := m.Price * (1 + float64(seed%50)/100)
	eps := price / float64(12+seed%18)
	return model.Fundamentals{
		Symbol:           symbol,
		Name:             symbol + " Corp",
		Currency:         "USD",
		Price:            price,
		TrailingPE:       price / eps,
		ForwardPE:        price / (eps * 1.08),
		TrailingEPS:      eps,
		ForwardEPS:       eps * 1.08,
		PriceToBook:      1 + float64(seed%9),
		DividendYield:    float64(seed%4) / 100,
		MarketCap:        int64(price * 1e9),
		FiftyTwoWeekHigh: price * 1.2,
		FiftyTwoWeekLow:  price * 0.8,
	}, nil
}

func symbolSeed(symbol string) int {
	seed := 0
	for _, r := range symbol {
		seed += int(r)
	}
	return seed
}

// generateMockBars builds one bar per weekday with a per-symbol drift so
// different symbols rank differently.
func generateMockBars(symbol string, basePrice float64, start, end time.Time) []model.OHLCV {
	seed := symbolSeed(symbol)
	drift := float64(seed%21-10) * 0.0005

	var bars []model.OHLCV
	p := basePrice * (1 + float64(seed%50)/100)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		p *= 1 + drift
	}
	return bars
}

package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/model"
)

// ErrNoData is returned when a source has no closing prices inside a window.
var ErrNoData = errors.New("no data in window")

// PriceSource returns the first and last closes of a symbol inside [start, end].
type PriceSource interface {
	FetchWindow(ctx context.Context, symbol string, start, end time.Time) (model.Window, error)
	Name() string
}

// HistorySource returns daily bars of a symbol inside [start, end], oldest first.
type HistorySource interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}

// Fetcher is a market-data backend. Every backend serves both windows and history.
type Fetcher interface {
	PriceSource
	HistorySource
}

// Options carries backend settings resolved from configuration.
type Options struct {
	Proxy         string
	BaseURL       string
	APIKey        string
	AlpacaKey     string
	AlpacaSecret  string
	AlpacaBaseURL string
	AlpacaFeed    string
}

var backends = map[string]func(Options) (Fetcher, error){
	"yahoo": func(o Options) (Fetcher, error) { return NewYahooFetcher(o.Proxy), nil },
	"financego": func(o Options) (Fetcher, error) { return NewFinanceGoFetcher(), nil },
	"alpaca": func(o Options) (Fetcher, error) {
		return NewAlpacaFetcher(o.AlpacaKey, o.AlpacaSecret, o.AlpacaBaseURL, o.AlpacaFeed)
	},
	"rest": func(o Options) (Fetcher, error) {
		return NewRESTFetcher(o.BaseURL, o.APIKey, o.Proxy)
	},
	"mock": func(o Options) (Fetcher, error) { return NewMockFetcher(), nil },
}

// Providers lists the registered backend names.
func Providers() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the backend registered under provider.
func New(provider string, opts Options) (Fetcher, error) {
	build, ok := backends[strings.ToLower(provider)]
	if !ok {
		return nil, fmt.Errorf("unknown price provider %q (have %s)", provider, strings.Join(Providers(), ", "))
	}
	return build(opts)
}

// windowFromHistory derives a window from daily bars.
func windowFromHistory(ctx context.Context, h HistorySource, symbol string, start, end time.Time) (model.Window, error) {
	bars, err := h.FetchDailyBars(ctx, symbol, start, end)
	if err != nil {
		return model.Window{}, err
	}
	w, ok := calculator.WindowFromBars(symbol, bars)
	if !ok {
		return model.Window{}, fmt.Errorf("%s %s..%s: %w", symbol,
			start.Format(model.DateLayout), end.Format(model.DateLayout), ErrNoData)
	}
	return w, nil
}

// inWindow keeps bars whose calendar date lies inside [start, end].
func inWindow(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	from := start.Format(model.DateLayout)
	to := end.Format(model.DateLayout)
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		d := b.Time.UTC().Format(model.DateLayout)
		if d >= from && d <= to {
			out = append(out, b)
		}
	}
	return out
}

// exclusiveEnd returns the instant just after the last day of the window.
func exclusiveEnd(end time.Time) time.Time {
	return time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

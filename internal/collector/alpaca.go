package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"MarketPulse/internal/model"
)

// AlpacaFetcher reads daily bars from the Alpaca market data API.
type AlpacaFetcher struct {
	Client *marketdata.Client
	Feed   string
}

// NewAlpacaFetcher creates an Alpaca fetcher. baseURL may be empty for the
// production data host; feed defaults to "iex".
func NewAlpacaFetcher(apiKey, apiSecret, baseURL, feed string) (*AlpacaFetcher, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.New("alpaca: api key and secret are required")
	}
	if feed == "" {
		feed = "iex"
	}
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})
	return &AlpacaFetcher{Client: client, Feed: feed}, nil
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := f.Client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      start,
		End:        exclusiveEnd(end),
		Feed:       f.Feed,
		Adjustment: marketdata.Split,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, err)
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, model.OHLCV{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return inWindow(bars, start, end), nil
}

func (f *AlpacaFetcher) FetchWindow(ctx context.Context, symbol string, start, end time.Time) (model.Window, error) {
	return windowFromHistory(ctx, f, symbol, start, end)
}

package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"MarketPulse/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted bars service that
// answers GET /api/v1/bars/daily?symbol=&start=&end= with a JSON bar array.
type RESTFetcher struct {
	Client *resty.Client
}

// NewRESTFetcher creates a fetcher with optional bearer auth and proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) (*RESTFetcher, error) {
	if baseURL == "" {
		return nil, errors.New("rest: data_source.base_url is required")
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &RESTFetcher{Client: client}, nil
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars service.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"start":  start.Format(model.DateLayout),
			"end":    end.Format(model.DateLayout),
		}).
		Get("/api/v1/bars/daily")
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var raw []restBar
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, rb := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return inWindow(bars, start, end), nil
}

func (f *RESTFetcher) FetchWindow(ctx context.Context, symbol string, start, end time.Time) (model.Window, error) {
	return windowFromHistory(ctx, f, symbol, start, end)
}

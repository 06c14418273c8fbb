package model

import "time"

// DateLayout is the ISO date format used for cache keys and JSON payloads.
const DateLayout = "2006-01-02"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Window holds the chronologically first and last closing prices observed
// inside a date range.
type Window struct {
	Symbol     string
	FirstClose float64
	LastClose  float64
	FirstDate  time.Time
	LastDate   time.Time
}

// PriceSeries holds daily bars for one symbol over a range.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

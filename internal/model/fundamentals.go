package model

import "time"

// Fundamentals is a point-in-time valuation snapshot for one symbol.
// Zero means the source did not report the figure.
type Fundamentals struct {
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	Price            float64   `json:"price"`
	TrailingPE       float64   `json:"trailing_pe"`
	ForwardPE        float64   `json:"forward_pe"`
	TrailingEPS      float64   `json:"trailing_eps"`
	ForwardEPS       float64   `json:"forward_eps"`
	PriceToBook      float64   `json:"price_to_book"`
	DividendYield    float64   `json:"dividend_yield"` // fraction, 0.012 = 1.2%
	MarketCap        int64     `json:"market_cap"`
	FiftyTwoWeekHigh float64   `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64   `json:"fifty_two_week_low"`
	EarningsDate     time.Time `json:"earnings_date,omitzero"`
}

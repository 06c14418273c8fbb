package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is one position in the tracked portfolio.
type Holding struct {
	ID            string          `json:"id"`
	Ticker        string          `json:"ticker"`
	Shares        decimal.Decimal `json:"shares"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// HoldingPerformance is a holding valued at the latest close.
type HoldingPerformance struct {
	Holding       Holding         `json:"holding"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	GainLoss      decimal.Decimal `json:"gain_loss"`
	PercentChange decimal.Decimal `json:"percent_change"`
}

// PortfolioSummary aggregates all holdings.
type PortfolioSummary struct {
	Holdings         []HoldingPerformance `json:"holdings"`
	Unpriced         []string             `json:"unpriced,omitempty"`
	TotalCost        decimal.Decimal      `json:"total_cost"`
	TotalValue       decimal.Decimal      `json:"total_value"`
	TotalGainLoss    decimal.Decimal      `json:"total_gain_loss"`
	AvgPercentChange decimal.Decimal      `json:"avg_percent_change"`
	ValuedAt         time.Time            `json:"valued_at"`
}

// StockList is a named set of tickers.
type StockList struct {
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
}

package model

// SymbolStats summarizes one symbol's bars over a comparison window.
type SymbolStats struct {
	FirstClose    float64 `json:"first_close"`
	LastClose     float64 `json:"last_close"`
	PercentChange float64 `json:"percent_change"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	RangePosition float64 `json:"range_position"` // 0 at the low, 1 at the high
	MaxDrawdown   float64 `json:"max_drawdown"`
	RSI14         float64 `json:"rsi14"`
	SMA50         float64 `json:"sma50,omitempty"`
}

package model

// PriceChangeRecord is one cached percent change for a symbol over a window.
type PriceChangeRecord struct {
	Symbol        string  `json:"symbol"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	PercentChange float64 `json:"percent_change"`
}

// RankedChange is one entry of a period ranking.
type RankedChange struct {
	Symbol        string  `json:"symbol"`
	PercentChange float64 `json:"percent_change"`
}

// PeriodResult is the merged outcome for a single period.
type PeriodResult struct {
	Period  Period             `json:"period"`
	Changes map[string]float64 `json:"changes"`
	Ranked  []RankedChange     `json:"ranked"`
	Cached  int                `json:"cached"`
	Fetched int                `json:"fetched"`
}

// ChangeMatrix is the symbol x period table of percent changes.
// Rows[symbol][i] belongs to Periods[i]; unresolved cells hold 0.0.
type ChangeMatrix struct {
	Symbols []string             `json:"symbols"`
	Periods []Period             `json:"periods"`
	Rows    map[string][]float64 `json:"rows"`
	Results []PeriodResult       `json:"results"`
}

// Value returns the cell for symbol in period i, or 0 when absent.
func (m *ChangeMatrix) Value(symbol string, i int) float64 {
	row, ok := m.Rows[symbol]
	if !ok || i < 0 || i >= len(row) {
		return 0
	}
	return row[i]
}

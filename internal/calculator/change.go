package calculator

import (
	"errors"
	"sort"

	"MarketPulse/internal/model"
)

// ErrZeroBase is returned when the first close of a window is zero.
var ErrZeroBase = errors.New("first close is zero")

// PercentChange returns (last - first) / first * 100.
func PercentChange(first, last float64) (float64, error) {
	if first == 0 {
		return 0, ErrZeroBase
	}
	return (last - first) / first * 100, nil
}

// WindowFromBars picks the chronologically first and last closes out of bars.
// A zero close is kept as a real value; decoders drop sessions with no quote.
func WindowFromBars(symbol string, bars []model.OHLCV) (model.Window, bool) {
	valid := append([]model.OHLCV(nil), bars...)
	if len(valid) == 0 {
		return model.Window{}, false
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Time.Before(valid[j].Time) })

	first, last := valid[0], valid[len(valid)-1]
	return model.Window{
		Symbol:     symbol,
		FirstClose: first.Close,
		LastClose:  last.Close,
		FirstDate:  first.Time,
		LastDate:   last.Time,
	}, true
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

package calculator

import (
	"errors"
	"math"

	"MarketPulse/internal/model"
)

// TradingDaysPerYear is the lookback used for one-year ranges.
const TradingDaysPerYear = 252

// HighLow returns the highest high and lowest low over the last lookback
// bars, or over all bars when lookback <= 0. Bars without a high or low
// fall back to their close.
func HighLow(bars []model.OHLCV, lookback int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	start := 0
	if lookback > 0 && len(bars) > lookback {
		start = len(bars) - lookback
	}
	high, low = math.Inf(-1), math.Inf(1)
	for _, b := range bars[start:] {
		h, l := b.High, b.Low
		if h == 0 {
			h = b.Close
		}
		if l == 0 {
			l = b.Close
		}
		high = math.Max(high, h)
		low = math.Min(low, l)
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high], clamped to 0..1.
func RangePosition(current, high, low float64) (float64, error) {
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	if high == low {
		return 0.5, nil
	}
	return math.Min(1, math.Max(0, (current-low)/(high-low))), nil
}

// MaxDrawdown returns the largest peak-to-trough decline of closes in percent.
func MaxDrawdown(bars []model.OHLCV) float64 {
	peak, worst := 0.0, 0.0
	for _, c := range extractCloses(bars) {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			if dd := (c - peak) / peak * 100; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

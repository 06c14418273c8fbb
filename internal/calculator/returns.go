package calculator

import (
	"errors"
	"math"

	"MarketPulse/internal/model"
)

// DailyReturns returns close-to-close fractional returns. The result is one
// shorter than bars; a zero previous close yields a zero return.
func DailyReturns(bars []model.OHLCV) []float64 {
	closes := extractCloses(bars)
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out[i-1] = closes[i]/closes[i-1] - 1
	}
	return out
}

// CumulativeReturns compounds daily returns: (1+r1)(1+r2)...-1 at each step.
func CumulativeReturns(returns []float64) []float64 {
	out := make([]float64, len(returns))
	acc := 1.0
	for i, r := range returns {
		acc *= 1 + r
		out[i] = acc - 1
	}
	return out
}

// Correlation returns the Pearson correlation of two equal-length series.
func Correlation(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.New("series length mismatch")
	}
	if len(a) < 2 {
		return 0, errors.New("not enough data for correlation")
	}
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, errors.New("zero variance series")
	}
	return cov / math.Sqrt(varA*varB), nil
}

package calculator

import (
	"errors"

	"MarketPulse/internal/model"
)

// SMA returns the simple moving average of the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CloseSMA is SMA over the closes of bars.
func CloseSMA(bars []model.OHLCV, period int) (float64, error) {
	return SMA(extractCloses(bars), period)
}

package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"MarketPulse/internal/model"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPercentChange(t *testing.T) {
	tests := []struct {
		first, last, want float64
	}{
		{100, 110, 10},
		{200, 150, -25},
		{50, 50, 0},
	}
	for _, tt := range tests {
		got, err := PercentChange(tt.first, tt.last)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !almostEqual(got, tt.want) {
			t.Errorf("PercentChange(%.1f, %.1f): expected %.4f, got %.4f", tt.first, tt.last, tt.want, got)
		}
	}
}

func TestPercentChange_ZeroBase(t *testing.T) {
	if _, err := PercentChange(0, 10); !errors.Is(err, ErrZeroBase) {
		t.Errorf("expected ErrZeroBase, got %v", err)
	}
}

func TestWindowFromBars_UsesChronologicalOrder(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }
	bars := []model.OHLCV{
		{Time: day(10), Close: 105},
		{Time: day(2), Close: 100},
		{Time: day(28), Close: 110},
	}

	w, ok := WindowFromBars("AAA", bars)
	if !ok {
		t.Fatal("expected a window")
	}
	if w.FirstClose != 100 || w.LastClose != 110 {
		t.Errorf("expected first=100 last=110, got first=%.1f last=%.1f", w.FirstClose, w.LastClose)
	}
	if !w.LastDate.Equal(day(28)) {
		t.Errorf("expected last date %s, got %s", day(28), w.LastDate)
	}
}

func TestWindowFromBars_KeepsZeroFirstClose(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }
	bars := []model.OHLCV{
		{Time: day(10), Close: 50},
		{Time: day(2), Close: 0},
		{Time: day(30), Close: 60},
	}

	w, ok := WindowFromBars("ZB", bars)
	if !ok {
		t.Fatal("expected a window")
	}
	if w.FirstClose != 0 || !w.FirstDate.Equal(day(2)) {
		t.Errorf("expected zero first close on Jan 2, got %.1f on %s", w.FirstClose, w.FirstDate)
	}
	if _, err := PercentChange(w.FirstClose, w.LastClose); !errors.Is(err, ErrZeroBase) {
		t.Errorf("expected ErrZeroBase, got %v", err)
	}
}

func TestWindowFromBars_Empty(t *testing.T) {
	if _, ok := WindowFromBars("AAA", nil); ok {
		t.Error("expected no window for empty bars")
	}
}

func TestCAGR(t *testing.T) {
	got, err := CAGR(100, 121, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-0.1) > 1e-9 {
		t.Errorf("expected 0.1, got %.6f", got)
	}

	if _, err := CAGR(0, 100, 1); err == nil {
		t.Error("expected error for zero start value")
	}
	if _, err := CAGR(100, 200, 0); err == nil {
		t.Error("expected error for zero years")
	}
}

func TestCompoundInterest_Monthly(t *testing.T) {
	res, err := CompoundInterest(1000, 12, 1, 12, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FinalValue.String() != "1126.83" {
		t.Errorf("expected 1126.83, got %s", res.FinalValue)
	}
	if len(res.YearEndBalances) != 1 {
		t.Errorf("expected 1 year-end balance, got %d", len(res.YearEndBalances))
	}
}

func TestCompoundInterest_AnnualWithContributions(t *testing.T) {
	res, err := CompoundInterest(1000, 10, 2, 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FinalValue.String() != "3730" {
		t.Errorf("expected 3730, got %s", res.FinalValue)
	}
	if res.TotalContributed.String() != "3400" {
		t.Errorf("expected contributed 3400, got %s", res.TotalContributed)
	}
	if res.InterestEarned.String() != "330" {
		t.Errorf("expected interest 330, got %s", res.InterestEarned)
	}
	if res.YearEndBalances[0].String() != "2300" {
		t.Errorf("expected first year 2300, got %s", res.YearEndBalances[0])
	}
}

func TestCompoundInterest_InvalidFrequency(t *testing.T) {
	if _, err := CompoundInterest(1000, 5, 1, 0, 0); err == nil {
		t.Error("expected error for zero frequency")
	}
}

func TestDailyAndCumulativeReturns(t *testing.T) {
	bars := []model.OHLCV{{Close: 100}, {Close: 110}, {Close: 99}}
	daily := DailyReturns(bars)
	if len(daily) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(daily))
	}
	if !almostEqual(daily[0], 0.1) || !almostEqual(daily[1], -0.1) {
		t.Errorf("unexpected daily returns: %v", daily)
	}

	cum := CumulativeReturns(daily)
	if !almostEqual(cum[1], -0.01) {
		t.Errorf("expected cumulative -0.01, got %.6f", cum[1])
	}
}

func TestCorrelation(t *testing.T) {
	up := []float64{1, 2, 3, 4}
	double := []float64{2, 4, 6, 8}
	down := []float64{4, 3, 2, 1}

	if c, err := Correlation(up, double); err != nil || !almostEqual(c, 1) {
		t.Errorf("expected correlation 1, got %.6f (err %v)", c, err)
	}
	if c, err := Correlation(up, down); err != nil || !almostEqual(c, -1) {
		t.Errorf("expected correlation -1, got %.6f (err %v)", c, err)
	}
	if _, err := Correlation(up, []float64{1, 1, 1, 1}); err == nil {
		t.Error("expected error for zero variance")
	}
}

func closesToBars(closes ...float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC), Close: c}
	}
	return bars
}

func TestSMA(t *testing.T) {
	v, err := SMA([]float64{1, 2, 3, 4, 5}, 2)
	if err != nil || v != 4.5 {
		t.Errorf("expected 4.5, got %v (%v)", v, err)
	}
	if _, err := SMA([]float64{1}, 2); err == nil {
		t.Error("expected error for short series")
	}
	if _, err := SMA([]float64{1}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestHighLowAndPosition(t *testing.T) {
	bars := closesToBars(10, 30, 20, 5, 15)
	bars[1].High = 32

	high, low, err := HighLow(bars, 0)
	if err != nil || high != 32 || low != 5 {
		t.Errorf("expected 32/5, got %v/%v (%v)", high, low, err)
	}
	high, low, _ = HighLow(bars, 2)
	if high != 15 || low != 5 {
		t.Errorf("expected last-2 range 15/5, got %v/%v", high, low)
	}
	if _, _, err := HighLow(nil, 0); err == nil {
		t.Error("expected error for no bars")
	}

	pos, _ := RangePosition(10, 15, 5)
	if pos != 0.5 {
		t.Errorf("expected 0.5, got %v", pos)
	}
	if pos, _ := RangePosition(20, 15, 5); pos != 1 {
		t.Errorf("expected clamp to 1, got %v", pos)
	}
	if _, err := RangePosition(1, 1, 2); err == nil {
		t.Error("expected error for high < low")
	}
}

func TestMaxDrawdown(t *testing.T) {
	if dd := MaxDrawdown(closesToBars(100, 120, 90, 110, 60, 130)); dd != -50 {
		t.Errorf("expected -50, got %v", dd)
	}
	if dd := MaxDrawdown(closesToBars(1, 2, 3)); dd != 0 {
		t.Errorf("expected 0 for rising series, got %v", dd)
	}
}

func TestRSI(t *testing.T) {
	if v, _ := RSI(closesToBars(1, 2), 14); v != 50 {
		t.Errorf("expected 50 with insufficient data, got %v", v)
	}
	if v, _ := RSI(closesToBars(1, 2, 3, 4, 5), 3); v != 100 {
		t.Errorf("expected 100 for only gains, got %v", v)
	}
	if v, _ := RSI(closesToBars(5, 4, 3, 2, 1), 3); v != 0 {
		t.Errorf("expected 0 for only losses, got %v", v)
	}
	if _, err := RSI(nil, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

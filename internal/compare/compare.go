// Package compare lines up several symbols over one date range: cumulative
// returns per trading day and the correlation of their daily returns.
package compare

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/logging"
	"MarketPulse/internal/model"
	"MarketPulse/internal/store"
)

// maxConcurrentFetches bounds parallel history requests.
const maxConcurrentFetches = 4

// Result is the comparison of several symbols over one range.
type Result struct {
	Symbols     []string                      `json:"symbols"`
	Dates       []string                      `json:"dates"`
	Cumulative  map[string][]float64          `json:"cumulative"`
	Correlation map[string]map[string]float64 `json:"correlation"`
	Stats       map[string]model.SymbolStats  `json:"stats"`
	Skipped     map[string]string             `json:"skipped,omitempty"`
}

// Comparer fetches histories and derives the comparison.
type Comparer struct {
	Source collector.HistorySource
	Log    *zap.SugaredLogger
}

func New(source collector.HistorySource, log *zap.SugaredLogger) *Comparer {
	return &Comparer{Source: source, Log: logging.OrNop(log)}
}

// Compare fetches all symbols concurrently. Symbols that fail or have fewer
// than two bars are reported in Skipped instead of failing the call. Returns
// are aligned on the dates every remaining symbol traded.
func (c *Comparer) Compare(ctx context.Context, symbols []string, start, end time.Time) (*Result, error) {
	symbols = store.NormalizeTickers(symbols)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("compare: no symbols")
	}

	var mu sync.Mutex
	series := make(map[string][]model.OHLCV, len(symbols))
	res := &Result{Skipped: make(map[string]string)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for _, sym := range symbols {
		sym := sym
		g.Go(func() error {
			bars, err := c.Source.FetchDailyBars(gctx, sym, start, end)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				c.Log.Warnf("compare: %s fetch failed: %v", sym, err)
				res.Skipped[sym] = err.Error()
			case len(bars) < 2:
				res.Skipped[sym] = "not enough data"
			default:
				series[sym] = bars
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, sym := range symbols {
		if _, ok := series[sym]; ok {
			res.Symbols = append(res.Symbols, sym)
		}
	}
	dates, aligned := align(res.Symbols, series)
	res.Dates = dates
	res.Cumulative = make(map[string][]float64, len(res.Symbols))
	res.Correlation = make(map[string]map[string]float64, len(res.Symbols))

	daily := make(map[string][]float64, len(res.Symbols))
	for _, sym := range res.Symbols {
		daily[sym] = calculator.DailyReturns(aligned[sym])
		res.Cumulative[sym] = append([]float64{0}, calculator.CumulativeReturns(daily[sym])...)
	}
	for _, a := range res.Symbols {
		res.Correlation[a] = make(map[string]float64, len(res.Symbols))
		for _, b := range res.Symbols {
			if a == b {
				res.Correlation[a][b] = 1
				continue
			}
			if corr, err := calculator.Correlation(daily[a], daily[b]); err == nil {
				res.Correlation[a][b] = corr
			}
		}
	}
	res.Stats = make(map[string]model.SymbolStats, len(res.Symbols))
	for _, sym := range res.Symbols {
		res.Stats[sym] = summarize(series[sym])
	}
	if len(res.Skipped) == 0 {
		res.Skipped = nil
	}
	return res, nil
}

// summarize derives range and momentum figures from one symbol's own bars.
func summarize(bars []model.OHLCV) model.SymbolStats {
	sorted := append([]model.OHLCV(nil), bars...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	var st model.SymbolStats
	if w, ok := calculator.WindowFromBars("", sorted); ok {
		st.FirstClose, st.LastClose = w.FirstClose, w.LastClose
		st.PercentChange, _ = calculator.PercentChange(w.FirstClose, w.LastClose)
	}
	st.High, st.Low, _ = calculator.HighLow(sorted, calculator.TradingDaysPerYear)
	st.RangePosition, _ = calculator.RangePosition(st.LastClose, st.High, st.Low)
	st.MaxDrawdown = calculator.MaxDrawdown(sorted)
	st.RSI14, _ = calculator.RSI(sorted, 14)
	st.SMA50, _ = calculator.CloseSMA(sorted, 50)
	return st
}

// align keeps only the dates present in every series, oldest first.
func align(symbols []string, series map[string][]model.OHLCV) ([]string, map[string][]model.OHLCV) {
	counts := make(map[string]int)
	for _, sym := range symbols {
		for _, b := range series[sym] {
			counts[b.Time.UTC().Format(model.DateLayout)]++
		}
	}
	var dates []string
	for d, n := range counts {
		if n == len(symbols) {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	keep := make(map[string]bool, len(dates))
	for _, d := range dates {
		keep[d] = true
	}
	out := make(map[string][]model.OHLCV, len(symbols))
	for _, sym := range symbols {
		for _, b := range series[sym] {
			if keep[b.Time.UTC().Format(model.DateLayout)] {
				out[sym] = append(out[sym], b)
			}
		}
		sort.Slice(out[sym], func(i, j int) bool { return out[sym][i].Time.Before(out[sym][j].Time) })
	}
	return dates, out
}

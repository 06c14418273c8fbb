// Package aggregator merges cached and freshly fetched percent changes
// across periods into rankings and a symbol x period matrix.
package aggregator

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"MarketPulse/internal/collector"
	"MarketPulse/internal/logging"
	"MarketPulse/internal/model"
	"MarketPulse/internal/period"
	"MarketPulse/internal/store"
)

// Aggregator orchestrates cache lookups and fetches per period.
type Aggregator struct {
	Cache     store.ChangeCache
	Collector *collector.Collector
	Resolver  *period.Resolver
	Log       *zap.SugaredLogger
}

// New creates an Aggregator on the wall-clock resolver.
func New(cache store.ChangeCache, col *collector.Collector, log *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		Cache:     cache,
		Collector: col,
		Resolver:  period.NewResolver(),
		Log:       logging.OrNop(log),
	}
}

// Aggregate resolves every period independently: cache hits are kept as is,
// only the missing symbols are fetched and stored, and the results are merged.
// Periods keep the caller's order. Cells a symbol could not fill hold 0.0.
func (a *Aggregator) Aggregate(ctx context.Context, symbols []string, periods []model.Period) (*model.ChangeMatrix, error) {
	symbols = store.NormalizeTickers(symbols)
	m := &model.ChangeMatrix{
		Symbols: symbols,
		Periods: periods,
		Rows:    make(map[string][]float64, len(symbols)),
		Results: make([]model.PeriodResult, 0, len(periods)),
	}
	for _, sym := range symbols {
		m.Rows[sym] = make([]float64, len(periods))
	}

	for i, p := range periods {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", p.Name(), err)
		}
		res := a.resolvePeriod(ctx, symbols, p)
		for sym, v := range res.Changes {
			m.Rows[sym][i] = v
		}
		m.Results = append(m.Results, res)
	}
	return m, nil
}

func (a *Aggregator) resolvePeriod(ctx context.Context, symbols []string, p model.Period) model.PeriodResult {
	cached, err := a.Cache.Lookup(ctx, symbols, p.Start, p.End)
	if err != nil {
		a.Log.Warnf("cache lookup %s failed: %v, fetching all symbols", p.Name(), err)
		cached = nil
	}

	merged := make(map[string]float64, len(symbols))
	var missing []string
	for _, sym := range symbols {
		if v, ok := cached[sym]; ok {
			merged[sym] = v
		} else {
			missing = append(missing, sym)
		}
	}

	fetched := map[string]float64{}
	if len(missing) > 0 {
		fetched = a.Collector.Collect(ctx, missing, p.Start, p.End)
		if err := a.Cache.Store(ctx, fetched, p.Start, p.End); err != nil {
			a.Log.Errorf("cache store %s failed: %v", p.Name(), err)
		}
		for sym, v := range fetched {
			if _, ok := merged[sym]; !ok {
				merged[sym] = v
			}
		}
	}

	a.Log.Infof("%s: %d cached, %d fetched, %d unresolved",
		p.Name(), len(symbols)-len(missing), len(fetched), len(symbols)-len(merged))

	return model.PeriodResult{
		Period:  p,
		Changes: merged,
		Ranked:  rankOrdered(merged, symbols),
		Cached:  len(symbols) - len(missing),
		Fetched: len(fetched),
	}
}

// Rank orders changes descending. Ties keep alphabetical symbol order.
func Rank(changes map[string]float64) []model.RankedChange {
	symbols := make([]string, 0, len(changes))
	for sym := range changes {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return rankOrdered(changes, symbols)
}

// rankOrdered stable-sorts by value, so ties keep the order of symbols.
func rankOrdered(changes map[string]float64, symbols []string) []model.RankedChange {
	out := make([]model.RankedChange, 0, len(changes))
	for _, sym := range symbols {
		if v, ok := changes[sym]; ok {
			out = append(out, model.RankedChange{Symbol: sym, PercentChange: v})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PercentChange > out[j].PercentChange })
	return out
}

// Changes returns the percent changes of symbols for one quarter or year.
func (a *Aggregator) Changes(ctx context.Context, symbols []string, label string, year int) (map[string]float64, error) {
	p, err := period.Resolve(label, year)
	if err != nil {
		return nil, err
	}
	m, err := a.Aggregate(ctx, symbols, []model.Period{p})
	if err != nil {
		return nil, err
	}
	return m.Results[0].Changes, nil
}

// ChangeMatrix is Aggregate under its caller-facing name.
func (a *Aggregator) ChangeMatrix(ctx context.Context, symbols []string, periods []model.Period) (*model.ChangeMatrix, error) {
	return a.Aggregate(ctx, symbols, periods)
}

// LastQuarters aggregates the trailing n quarters.
func (a *Aggregator) LastQuarters(ctx context.Context, symbols []string, n int) (*model.ChangeMatrix, error) {
	return a.Aggregate(ctx, symbols, a.Resolver.LastQuarters(n))
}

// LastYears aggregates the trailing n calendar years.
func (a *Aggregator) LastYears(ctx context.Context, symbols []string, n int) (*model.ChangeMatrix, error) {
	return a.Aggregate(ctx, symbols, a.Resolver.LastYears(n))
}

package collector

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/logging"
	"MarketPulse/internal/model"
)

// Collector turns price windows into percent changes for a batch of symbols.
type Collector struct {
	Source PriceSource
	Log    *zap.SugaredLogger
}

// NewCollector creates a new Collector.
func NewCollector(source PriceSource, log *zap.SugaredLogger) *Collector {
	return &Collector{Source: source, Log: logging.OrNop(log)}
}

// Collect fetches each symbol in turn and returns the percent change over
// [start, end]. Symbols with no data, a failed fetch, or a zero first close
// are left out; one bad symbol never aborts the batch. A cancelled context
// stops the loop and returns what was collected so far.
func (c *Collector) Collect(ctx context.Context, symbols []string, start, end time.Time) map[string]float64 {
	out := make(map[string]float64, len(symbols))
	from, to := start.Format(model.DateLayout), end.Format(model.DateLayout)

	for _, sym := range symbols {
		if ctx.Err() != nil {
			c.Log.Warnf("collect %s..%s cancelled after %d/%d symbols", from, to, len(out), len(symbols))
			break
		}

		w, err := c.Source.FetchWindow(ctx, sym, start, end)
		if errors.Is(err, ErrNoData) {
			c.Log.Debugf("%s: no data between %s and %s", sym, from, to)
			continue
		}
		if err != nil {
			c.Log.Warnf("%s: %s fetch failed: %v, skipping", sym, c.Source.Name(), err)
			continue
		}

		pct, err := calculator.PercentChange(w.FirstClose, w.LastClose)
		if err != nil {
			c.Log.Warnf("%s: %v, skipping", sym, err)
			continue
		}
		out[sym] = pct
	}
	return out
}

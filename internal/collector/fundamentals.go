package collector

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"go.uber.org/zap"

	"MarketPulse/internal/logging"
	"MarketPulse/internal/model"
)

// FundamentalsSource returns a valuation snapshot for one symbol.
type FundamentalsSource interface {
	Fundamentals(ctx context.Context, symbol string) (model.Fundamentals, error)
}

// FundamentalsFor returns the fetcher itself when it can serve fundamentals,
// otherwise the Yahoo quote endpoint through finance-go.
func FundamentalsFor(f Fetcher) FundamentalsSource {
	if src, ok := f.(FundamentalsSource); ok {
		return src
	}
	return NewFinanceGoFetcher()
}

// Fundamentals reads the equity quote for symbol.
func (f *FinanceGoFetcher) Fundamentals(ctx context.Context, symbol string) (model.Fundamentals, error) {
	if err := ctx.Err(); err != nil {
		return model.Fundamentals{}, err
	}
	get := f.equity
	if get == nil {
		get = equity.Get
	}
	eq, err := get(symbol)
	if err != nil {
		return model.Fundamentals{}, fmt.Errorf("finance-go equity %s: %w", symbol, err)
	}
	if eq == nil {
		return model.Fundamentals{}, fmt.Errorf("finance-go equity %s: %w", symbol, ErrNoData)
	}
	return fundamentalsFromEquity(symbol, eq), nil
}

func fundamentalsFromEquity(symbol string, eq *finance.Equity) model.Fundamentals {
	name := eq.LongName
	if name == "" {
		name = eq.ShortName
	}
	fd := model.Fundamentals{
		Symbol:           symbol,
		Name:             name,
		Currency:         eq.CurrencyID,
		Price:            eq.RegularMarketPrice,
		TrailingPE:       eq.TrailingPE,
		ForwardPE:        eq.ForwardPE,
		TrailingEPS:      eq.EpsTrailingTwelveMonths,
		ForwardEPS:       eq.EpsForward,
		PriceToBook:      eq.PriceToBook,
		DividendYield:    eq.TrailingAnnualDividendYield,
		MarketCap:        eq.MarketCap,
		FiftyTwoWeekHigh: eq.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  eq.FiftyTwoWeekLow,
	}
	// Yahoo leaves trailingPE out for loss-making companies.
	if fd.TrailingPE == 0 && fd.TrailingEPS > 0 {
		fd.TrailingPE = fd.Price / fd.TrailingEPS
	}
	if eq.EarningsTimestamp > 0 {
		fd.EarningsDate = time.Unix(int64(eq.EarningsTimestamp), 0).UTC()
	}
	return fd
}

// CollectFundamentals fetches each symbol in turn, skipping the ones that fail.
func CollectFundamentals(ctx context.Context, src FundamentalsSource, symbols []string, log *zap.SugaredLogger) []model.Fundamentals {
	log = logging.OrNop(log)
	out := make([]model.Fundamentals, 0, len(symbols))
	for _, sym := range symbols {
		if ctx.Err() != nil {
			log.Warnf("fundamentals cancelled after %d/%d symbols", len(out), len(symbols))
			break
		}
		fd, err := src.Fundamentals(ctx, sym)
		if err != nil {
			log.Warnf("%s: fundamentals failed: %v, skipping", sym, err)
			continue
		}
		out = append(out, fd)
	}
	return out
}

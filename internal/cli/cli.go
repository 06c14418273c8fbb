// Package cli implements the pulse command line.
package cli

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"MarketPulse/internal/aggregator"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/compare"
	"MarketPulse/internal/config"
	"MarketPulse/internal/logging"
	"MarketPulse/internal/portfolio"
	"MarketPulse/internal/store"
)

// app holds the components a command needs. Storage and the price backend
// are opened on first use so offline commands like calc never touch them.
type app struct {
	cfgPath  string
	provider string
	noCache  bool

	cfg *config.Config
	log *zap.SugaredLogger

	store     *store.SQLiteStore
	fetcher   collector.Fetcher
	agg       *aggregator.Aggregator
	portfolio *portfolio.Manager
	comparer  *compare.Comparer
	funds     collector.FundamentalsSource
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return config.DefaultPath
}

func (a *app) loadConfig() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.provider != "" {
		cfg.DataSource.Provider = strings.ToLower(a.provider)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

func (a *app) open() error {
	if a.store != nil {
		return nil
	}
	st, err := store.NewSQLiteStore(a.cfg.Database.SQLitePath, a.log)
	if err != nil {
		return err
	}
	fetcher, err := collector.New(a.cfg.DataSource.Provider, collector.Options{
		Proxy:         a.cfg.Proxy,
		BaseURL:       a.cfg.DataSource.BaseURL,
		APIKey:        a.cfg.DataSource.APIKey,
		AlpacaKey:     a.cfg.Alpaca.APIKey,
		AlpacaSecret:  a.cfg.Alpaca.APISecret,
		AlpacaBaseURL: a.cfg.Alpaca.BaseURL,
		AlpacaFeed:    a.cfg.Alpaca.Feed,
	})
	if err != nil {
		st.Close()
		return err
	}
	a.log.Debugf("data source: %s, cache: %s", fetcher.Name(), a.cfg.Database.SQLitePath)

	a.store = st
	a.fetcher = fetcher
	var cache store.ChangeCache = st
	if a.noCache {
		cache = store.NewMemoryCache()
	}
	a.agg = aggregator.New(cache, collector.NewCollector(fetcher, a.log), a.log)
	a.portfolio = portfolio.NewManager(st, fetcher, a.log)
	a.comparer = compare.New(fetcher, a.log)
	a.funds = collector.FundamentalsFor(fetcher)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warnf("close store: %v", err)
		}
		a.store = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/export"
	"MarketPulse/internal/model"
	"MarketPulse/internal/period"
	"MarketPulse/internal/store"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pulse",
		Short: "MarketPulse - quarterly and yearly stock performance",
		Long: `MarketPulse computes percent price changes of stocks over calendar quarters
and years, caches them locally and serves them over a CLI, HTTP and Telegram.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgPath, "config", defaultConfigPath(), "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&a.noCache, "no-cache", false, "Keep computed changes in memory only")
	rootCmd.PersistentFlags().StringVar(&a.provider, "provider", "", "Override the price provider (yahoo, financego, alpaca, rest, mock)")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newChangesCmd(a))
	rootCmd.AddCommand(newMatrixCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newListsCmd(a))
	rootCmd.AddCommand(newPortfolioCmd(a))
	rootCmd.AddCommand(newCalcCmd())
	rootCmd.AddCommand(newCompareCmd(a))
	rootCmd.AddCommand(newFundamentalsCmd(a))
	rootCmd.AddCommand(newCacheCmd(a))

	return rootCmd
}

// symbols resolves --list, explicit tickers, or the configured watchlist.
func (a *app) symbols(ctx context.Context, list string, args []string) ([]string, error) {
	if list != "" {
		l, err := a.store.LoadList(ctx, list)
		if err != nil {
			return nil, err
		}
		return l.Tickers, nil
	}
	if len(args) > 0 {
		return store.NormalizeTickers(args), nil
	}
	return a.cfg.DataSource.Symbols, nil
}

func newChangesCmd(a *app) *cobra.Command {
	var list string
	cmd := &cobra.Command{
		Use:   "changes LABEL YEAR [SYMBOL...]",
		Short: "Rank percent changes for one quarter (Q1-Q4) or full year (FY)",
		Example: `  pulse changes Q2 2023 AAPL MSFT
  pulse changes FY 2022 --list soxx`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := period.ResolveString(args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			symbols, err := a.symbols(cmd.Context(), list, args[2:])
			if err != nil {
				return err
			}
			m, err := a.agg.Aggregate(cmd.Context(), symbols, []model.Period{p})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRanking(m.Results[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&list, "list", "", "Use a saved or preset stock list")
	return cmd
}

// matrixFlags selects the periods of a matrix.
type matrixFlags struct {
	quarters int
	years    int
	periods  string
	list     string
}

func (f *matrixFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.quarters, "quarters", 0, "Trailing quarters, current one included (default 4)")
	cmd.Flags().IntVar(&f.years, "years", 0, "Trailing calendar years, current one included")
	cmd.Flags().StringVar(&f.periods, "periods", "", "Explicit periods, e.g. Q1-2024,Q2-2024,2023")
	cmd.Flags().StringVar(&f.list, "list", "", "Use a saved or preset stock list")
	cmd.MarkFlagsMutuallyExclusive("quarters", "years", "periods")
}

func (f *matrixFlags) resolve(r *period.Resolver) ([]model.Period, error) {
	switch {
	case f.periods != "":
		return period.ParseList(f.periods)
	case f.years < 0 || f.quarters < 0:
		return nil, fmt.Errorf("counts must not be negative")
	case f.years > 0:
		return r.LastYears(f.years), nil
	case f.quarters > 0:
		return r.LastQuarters(f.quarters), nil
	}
	return r.LastQuarters(4), nil
}

func (a *app) matrix(cmd *cobra.Command, f *matrixFlags, args []string) (*model.ChangeMatrix, error) {
	if err := a.open(); err != nil {
		return nil, err
	}
	periods, err := f.resolve(a.agg.Resolver)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("no periods requested")
	}
	symbols, err := a.symbols(cmd.Context(), f.list, args)
	if err != nil {
		return nil, err
	}
	return a.agg.Aggregate(cmd.Context(), symbols, periods)
}

func newMatrixCmd(a *app) *cobra.Command {
	f := &matrixFlags{}
	cmd := &cobra.Command{
		Use:   "matrix [SYMBOL...]",
		Short: "Show a symbol x period percent change table",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.matrix(cmd, f, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderMatrix(m))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	f := &matrixFlags{}
	var out string
	cmd := &cobra.Command{
		Use:   "export [SYMBOL...]",
		Short: "Write a percent change matrix to a parquet file",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.matrix(cmd, f, args)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = export.FileName(a.cfg.Export.Dir, time.Now())
			}
			n, err := export.WriteMatrix(path, m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ wrote %d rows to %s\n", n, path)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default: timestamped file in export.dir)")
	return cmd
}

func newListsCmd(a *app) *cobra.Command {
	listsCmd := &cobra.Command{
		Use:   "lists",
		Short: "Manage saved stock lists",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			return a.open()
		},
	}

	listsCmd.AddCommand(&cobra.Command{
		Use:   "save NAME SYMBOL...",
		Short: "Create or replace a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.SaveList(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			l, err := a.store.LoadList(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderList(l))
			return nil
		},
	})

	listsCmd.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Show the tickers of a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.store.LoadList(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderList(l))
			return nil
		},
	})

	listsCmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Short:   "List saved lists",
		Aliases: []string{"list"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.store.ListNames(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLists(names))
			return nil
		},
	})

	listsCmd.AddCommand(&cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a saved list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeleteList(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  deleted %s\n", args[0])
			return nil
		},
	})

	return listsCmd
}

func newPortfolioCmd(a *app) *cobra.Command {
	portfolioCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage holdings and show their performance",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			return a.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := a.portfolio.Performance(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPortfolio(sum))
			return nil
		},
	}

	var date string
	addCmd := &cobra.Command{
		Use:   "add TICKER SHARES PRICE",
		Short: "Add a holding",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid shares %q: %w", args[1], err)
			}
			price, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[2], err)
			}
			purchased := time.Now().UTC().Truncate(24 * time.Hour)
			if date != "" {
				if purchased, err = time.Parse(model.DateLayout, date); err != nil {
					return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
				}
			}
			h, err := a.portfolio.Add(cmd.Context(), args[0], shares, price, purchased)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ added %s (%s)\n", h.Ticker, h.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&date, "date", "", "Purchase date in YYYY-MM-DD format (today if not provided)")
	portfolioCmd.AddCommand(addCmd)

	portfolioCmd.AddCommand(&cobra.Command{
		Use:   "rm ID",
		Short: "Remove a holding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.portfolio.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  removed %s\n", args[0])
			return nil
		},
	})

	portfolioCmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List holdings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			holdings, err := a.portfolio.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHoldings(holdings))
			return nil
		},
	})

	portfolioCmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Import holdings from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.portfolio.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ imported %d holdings\n", n)
			return nil
		},
	})

	portfolioCmd.AddCommand(&cobra.Command{
		Use:   "export FILE",
		Short: "Export holdings to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.portfolio.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ exported %d holdings to %s\n", n, args[0])
			return nil
		},
	})

	return portfolioCmd
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		out[i] = v
	}
	return out, nil
}

func newCalcCmd() *cobra.Command {
	calcCmd := &cobra.Command{
		Use:   "calc",
		Short: "Investment calculators",
		// calculators need no config or storage
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}

	calcCmd.AddCommand(&cobra.Command{
		Use:   "cagr START END YEARS",
		Short: "Compound annual growth rate",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			rate, err := calculator.CAGR(v[0], v[1], v[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CAGR: %s\n", signed(rate*100))
			return nil
		},
	})

	var frequency int
	var contribution float64
	compoundCmd := &cobra.Command{
		Use:   "compound PRINCIPAL RATE YEARS",
		Short: "Compound interest projection (RATE in percent)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args[:2])
			if err != nil {
				return err
			}
			years, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid years %q", args[2])
			}
			res, err := calculator.CompoundInterest(v[0], v[1], years, frequency, contribution)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCompound(res))
			return nil
		},
	}
	compoundCmd.Flags().IntVar(&frequency, "frequency", 12, "Compounding periods per year")
	compoundCmd.Flags().Float64Var(&contribution, "contribution", 0, "Monthly contribution")
	calcCmd.AddCommand(compoundCmd)

	return calcCmd
}

func newCompareCmd(a *app) *cobra.Command {
	var start, end, list string
	cmd := &cobra.Command{
		Use:   "compare [SYMBOL...]",
		Short: "Compare cumulative returns and correlation of symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			to := time.Now().UTC()
			from := to.AddDate(-1, 0, 0)
			var err error
			if start != "" {
				if from, err = time.Parse(model.DateLayout, start); err != nil {
					return fmt.Errorf("invalid start date: %w", err)
				}
			}
			if end != "" {
				if to, err = time.Parse(model.DateLayout, end); err != nil {
					return fmt.Errorf("invalid end date: %w", err)
				}
			}
			if err := a.open(); err != nil {
				return err
			}
			symbols, err := a.symbols(cmd.Context(), list, args)
			if err != nil {
				return err
			}
			if len(symbols) < 2 {
				return fmt.Errorf("compare needs at least two symbols")
			}
			res, err := a.comparer.Compare(cmd.Context(), symbols, from, to)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCompare(res))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD (default one year ago)")
	cmd.Flags().StringVar(&end, "end", "", "End date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&list, "list", "", "Use a saved or preset stock list")
	return cmd
}

func newFundamentalsCmd(a *app) *cobra.Command {
	var list string
	cmd := &cobra.Command{
		Use:     "fundamentals [SYMBOL...]",
		Aliases: []string{"funds"},
		Short:   "Show P/E, EPS and other valuation figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			symbols, err := a.symbols(cmd.Context(), list, args)
			if err != nil {
				return err
			}
			rows := collector.CollectFundamentals(cmd.Context(), a.funds, symbols, a.log)
			fmt.Fprintln(cmd.OutOrStdout(), renderFundamentals(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&list, "list", "", "Use a saved or preset stock list")
	return cmd
}

func newCacheCmd(a *app) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or purge the percent change cache",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			return a.open()
		},
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows, %d symbols, %d windows\n", st.Rows, st.Symbols, st.Windows)
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "purge LABEL YEAR",
		Short: "Drop cached changes for one period",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := period.ResolveString(args[0], args[1])
			if err != nil {
				return err
			}
			n, err := a.store.Purge(cmd.Context(), p.Start, p.End)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  purged %d rows for %s\n", n, p.Name())
			return nil
		},
	})

	var limit int
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent warm-up and report runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := openRecorder(a)
			defer rec.Close()
			runs, err := rec.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
			return nil
		},
	}
	runsCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cacheCmd.AddCommand(runsCmd)

	return cacheCmd
}

package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"MarketPulse/internal/httpapi"
	"MarketPulse/internal/notifier"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/scheduler"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the cron tasks and the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if os.Getenv("RUN_ON_START") == "true" {
				runOnStart = true
			}
			return runServe(a, runOnStart)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Warm the cache immediately on start")
	return cmd
}

func runServe(a *app, runOnStart bool) error {
	a.log.Info("MarketPulse starting...")
	if err := a.open(); err != nil {
		return err
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.log)

	sched := scheduler.NewScheduler(ctx, a.agg, tn, scheduler.Watch{
		Symbols:  a.cfg.DataSource.Symbols,
		Quarters: a.cfg.Warmup.Quarters,
		Years:    a.cfg.Warmup.Years,
	}, a.log)
	sched.Recorder = openRecorder(a)
	defer sched.Recorder.Close()
	sched.Lists = a.store
	sched.Portfolio = a.portfolio
	if err := sched.RegisterAll(a.cfg.Schedule.WarmCron, a.cfg.Schedule.ReportCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		a.log.Info("telegram polling started")
	} else {
		a.log.Info("telegram not configured, bot disabled")
	}

	if runOnStart {
		a.log.Info("run-on-start enabled, warming cache now")
		go sched.RunWarmNow()
	}

	api := httpapi.NewServer(a.agg, a.cfg.DataSource.Symbols, a.log)
	api.Lists = a.store
	api.Portfolio = a.portfolio
	api.Comparer = a.comparer
	api.Fundamentals = a.funds
	api.Health = a.store

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	a.log.Infof("MarketPulse is running on %s. Press Ctrl+C to stop.", a.cfg.Server.Addr)

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received, stopping...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info("MarketPulse stopped")
	return nil
}

// openRecorder falls back to a no-op recorder when the run history cannot be opened.
func openRecorder(a *app) recorder.Recorder {
	rec, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath, a.log)
	if err != nil {
		a.log.Warnf("init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return rec
}

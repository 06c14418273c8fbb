package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"MarketPulse/internal/aggregator"
	"MarketPulse/internal/logging"
	"MarketPulse/internal/model"
	"MarketPulse/internal/notifier"
	"MarketPulse/internal/period"
	"MarketPulse/internal/portfolio"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/store"
)

// Watch is the default symbol set and the trailing window the warm-up covers.
type Watch struct {
	Symbols  []string
	Quarters int
	Years    int
}

// Scheduler manages cron tasks and answers bot commands.
type Scheduler struct {
	Cron       *cron.Cron
	Aggregator *aggregator.Aggregator
	Notifier   *notifier.TelegramNotifier
	Lists      store.ListStore    // optional
	Portfolio  *portfolio.Manager // optional
	Recorder   recorder.Recorder
	Watch      Watch
	Ctx        context.Context
	Log        *zap.SugaredLogger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, agg *aggregator.Aggregator, tn *notifier.TelegramNotifier, watch Watch, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Aggregator: agg,
		Notifier:   tn,
		Recorder:   recorder.NewNoopRecorder(),
		Watch:      watch,
		Ctx:        ctx,
		Log:        logging.OrNop(log),
	}
}

// RegisterAll registers the cache warm-up and the ranking report.
func (s *Scheduler) RegisterAll(warmCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(warmCron, s.warmTask); err != nil {
		return fmt.Errorf("register warm-up task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunWarmNow executes the warm-up immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunWarmNow() {
	s.warmTask()
}

// warmTask fills the cache for the watchlist over the trailing quarters and years.
func (s *Scheduler) warmTask() {
	s.Log.Infof("cache warm-up: %d symbols, %d quarters, %d years",
		len(s.Watch.Symbols), s.Watch.Quarters, s.Watch.Years)

	evt := &recorder.RunEvent{Task: recorder.TaskWarm, Started: time.Now(), Symbols: len(s.Watch.Symbols)}
	defer s.record(evt)

	var periods []model.Period
	if s.Watch.Quarters > 0 {
		periods = append(periods, s.Aggregator.Resolver.LastQuarters(s.Watch.Quarters)...)
	}
	if s.Watch.Years > 0 {
		periods = append(periods, s.Aggregator.Resolver.LastYears(s.Watch.Years)...)
	}
	m, err := s.Aggregator.Aggregate(s.Ctx, s.Watch.Symbols, periods)
	if err != nil {
		s.Log.Errorf("warm-up failed: %v", err)
		evt.Error = err.Error()
		return
	}
	evt.Periods = len(m.Periods)
	evt.Cached, evt.Fetched = totals(m)
	s.Log.Infof("warm-up done: %d periods, %d cached, %d fetched", evt.Periods, evt.Cached, evt.Fetched)
}

func totals(m *model.ChangeMatrix) (cached, fetched int) {
	for _, r := range m.Results {
		cached += r.Cached
		fetched += r.Fetched
	}
	return cached, fetched
}

// reportTask sends the current quarter's ranking.
func (s *Scheduler) reportTask() {
	evt := &recorder.RunEvent{Task: recorder.TaskReport, Started: time.Now(), Symbols: len(s.Watch.Symbols)}
	defer s.record(evt)

	m, err := s.Aggregator.LastQuarters(s.Ctx, s.Watch.Symbols, 1)
	if err != nil {
		s.Log.Errorf("report task failed: %v", err)
		evt.Error = err.Error()
		return
	}
	evt.Periods = 1
	evt.Cached, evt.Fetched = totals(m)
	s.trySend(notifier.FormatRanking(m.Results[0]))
}

func (s *Scheduler) record(evt *recorder.RunEvent) {
	evt.Duration = time.Since(evt.Started)
	if err := s.Recorder.RecordRun(context.WithoutCancel(s.Ctx), evt); err != nil {
		s.Log.Warnf("record %s run: %v", evt.Task, err)
	}
}

// HandleCommand answers a bot command.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "/changes":
		if len(args) < 2 {
			return "usage: /changes Q2 2023 [symbols or list]"
		}
		p, err := period.ResolveString(args[0], args[1])
		if err != nil {
			return fmt.Sprintf("⚠️ %v", err)
		}
		m, err := s.Aggregator.Aggregate(ctx, s.symbols(ctx, args[2:]), []model.Period{p})
		if err != nil {
			return fmt.Sprintf("⚠️ %v", err)
		}
		return notifier.FormatRanking(m.Results[0])

	case "/quarters", "/years":
		n := 4
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v <= 0 || v > 40 {
				return "⚠️ count must be between 1 and 40"
			}
			n, args = v, args[1:]
		}
		symbols := s.symbols(ctx, args)
		var m *model.ChangeMatrix
		var err error
		if strings.EqualFold(fields[0], "/quarters") {
			m, err = s.Aggregator.LastQuarters(ctx, symbols, n)
		} else {
			m, err = s.Aggregator.LastYears(ctx, symbols, n)
		}
		if err != nil {
			return fmt.Sprintf("⚠️ %v", err)
		}
		return notifier.FormatMatrix(m)

	case "/lists":
		if s.Lists == nil {
			return notifier.FormatLists(nil)
		}
		names, err := s.Lists.ListNames(ctx)
		if err != nil {
			return fmt.Sprintf("⚠️ %v", err)
		}
		return notifier.FormatLists(names)

	case "/portfolio":
		if s.Portfolio == nil {
			return "⚠️ portfolio is not configured"
		}
		sum, err := s.Portfolio.Performance(ctx)
		if err != nil {
			return fmt.Sprintf("⚠️ %v", err)
		}
		return notifier.FormatPortfolio(sum)

	default:
		return notifier.FormatHelp()
	}
}

// symbols resolves command arguments: a single saved list name, explicit
// tickers, or the watchlist when nothing is given.
func (s *Scheduler) symbols(ctx context.Context, args []string) []string {
	if len(args) == 0 {
		return s.Watch.Symbols
	}
	if len(args) == 1 && s.Lists != nil {
		if l, err := s.Lists.LoadList(ctx, args[0]); err == nil {
			return l.Tickers
		}
	}
	return store.NormalizeTickers(args)
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		s.Log.Debug("telegram disabled, report not sent")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Errorf("failed to send telegram message: %v", err)
	}
}

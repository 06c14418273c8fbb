package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"MarketPulse/internal/aggregator"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/notifier"
	"MarketPulse/internal/period"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/store"
)

func newTestScheduler(t *testing.T, tn *notifier.TelegramNotifier) (*Scheduler, *store.MemoryCache, *collector.MockFetcher) {
	t.Helper()
	cache := store.NewMemoryCache()
	fetcher := collector.NewMockFetcher()
	agg := aggregator.New(cache, collector.NewCollector(fetcher, nil), nil)
	agg.Resolver = &period.Resolver{Now: func() time.Time { return time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC) }}

	if tn == nil {
		tn = notifier.NewTelegramNotifier("", "", "", nil)
	}
	s := NewScheduler(context.Background(), agg, tn, Watch{Symbols: []string{"AAPL", "MSFT"}, Quarters: 2, Years: 1}, nil)
	return s, cache, fetcher
}

func TestWarmTask_FillsCache(t *testing.T) {
	s, cache, fetcher := newTestScheduler(t, nil)
	s.RunWarmNow()

	// 2 symbols x (2 quarters + 1 year)
	if cache.Len() != 6 {
		t.Errorf("expected 6 cached entries, got %d", cache.Len())
	}
	fetcher.ResetCalls()
	s.RunWarmNow()
	if calls := fetcher.Calls(); len(calls) != 0 {
		t.Errorf("expected second warm-up to hit the cache, got fetches %v", calls)
	}
}

func TestRegisterAll_BadSpec(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil)
	if err := s.RegisterAll("not a cron", "0 0 18 * * 5"); err == nil {
		t.Error("expected error for invalid warm-up spec")
	}
	if err := s.RegisterAll("0 0 9 1 1,4,7,10 *", "0 0 18 * * 5"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandleCommand(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil)
	ctx := context.Background()

	tests := []struct {
		command string
		want    string
	}{
		{"/changes Q1 2024 NVDA", "Q1 2024 performance"},
		{"/changes Q9 2024", "unknown period label"},
		{"/changes Q1", "usage"},
		{"/quarters 2", "Q2 2024"},
		{"/years 2 TSM", "2023"},
		{"/quarters zero", "between 1 and 40"},
		{"/lists", "No saved lists"},
		{"/portfolio", "not configured"},
		{"hello", "Commands"},
		{"", "Commands"},
	}
	for _, tt := range tests {
		got := s.HandleCommand(ctx, tt.command)
		if !strings.Contains(got, tt.want) {
			t.Errorf("command %q: expected %q in reply, got:\n%s", tt.command, tt.want, got)
		}
	}
}

func TestHandleCommand_SavedList(t *testing.T) {
	s, _, fetcher := newTestScheduler(t, nil)
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "pulse.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	if err := st.SaveList(context.Background(), "chips", []string{"NVDA", "AMD"}); err != nil {
		t.Fatalf("save list: %v", err)
	}
	s.Lists = st

	reply := s.HandleCommand(context.Background(), "/changes Q1 2024 chips")
	if !strings.Contains(reply, "NVDA") || !strings.Contains(reply, "AMD") {
		t.Errorf("expected list members in reply, got:\n%s", reply)
	}
	if calls := fetcher.Calls(); len(calls) != 2 {
		t.Errorf("expected 2 fetches, got %v", calls)
	}
	if reply := s.HandleCommand(context.Background(), "/lists"); !strings.Contains(reply, "chips") {
		t.Errorf("expected chips in list reply, got:\n%s", reply)
	}
}

func TestReportTask_SendsRanking(t *testing.T) {
	var sent int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&sent, 1)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := notifier.NewTelegramNotifier("TOKEN", "1", "", nil)
	tn.Client.SetBaseURL(srv.URL)
	s, _, _ := newTestScheduler(t, tn)

	s.reportTask()
	if n := atomic.LoadInt32(&sent); n != 1 {
		t.Errorf("expected one message sent, got %d", n)
	}
}

func TestWarmTask_RecordsRun(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil)
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"), nil)
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer rec.Close()
	s.Recorder = rec

	s.RunWarmNow()
	s.RunWarmNow()

	runs, err := rec.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	latest, first := runs[0], runs[1]
	if first.Task != recorder.TaskWarm || first.Periods != 3 || first.Fetched != 6 {
		t.Errorf("unexpected first run %+v", first)
	}
	if latest.Cached != 6 || latest.Fetched != 0 {
		t.Errorf("expected second run served from cache, got %+v", latest)
	}
}

package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteRecorder_RecentRuns(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs", "pulse.db"), nil)
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer r.Close()
	ctx := context.Background()

	base := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	runs := []*RunEvent{
		{Task: TaskWarm, Started: base, Duration: 1500 * time.Millisecond, Symbols: 6, Periods: 7, Fetched: 42},
		{Task: TaskReport, Started: base.Add(time.Hour), Symbols: 6, Periods: 1, Cached: 6},
		{Task: TaskWarm, Started: base.Add(2 * time.Hour), Error: "context canceled"},
	}
	for _, evt := range runs {
		if err := r.RecordRun(ctx, evt); err != nil {
			t.Fatalf("record run: %v", err)
		}
	}

	got, err := r.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].Error != "context canceled" || got[1].Task != TaskReport {
		t.Errorf("expected newest first, got %+v", got)
	}

	all, _ := r.RecentRuns(ctx, 10)
	first := all[len(all)-1]
	if !first.Started.Equal(base) || first.Duration != 1500*time.Millisecond || first.Fetched != 42 {
		t.Errorf("round trip mismatch: %+v", first)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordRun(context.Background(), &RunEvent{Task: TaskWarm}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if runs, _ := r.RecentRuns(context.Background(), 5); len(runs) != 0 {
		t.Errorf("expected no runs, got %v", runs)
	}
}

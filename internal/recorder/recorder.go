// Package recorder keeps a history of scheduled task runs.
package recorder

import (
	"context"
	"time"
)

// Task names recorded by the scheduler.
const (
	TaskWarm   = "warm"
	TaskReport = "report"
)

// RunEvent is one execution of a scheduled task.
type RunEvent struct {
	Task     string        `json:"task"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Symbols  int           `json:"symbols"`
	Periods  int           `json:"periods"`
	Cached   int           `json:"cached"`
	Fetched  int           `json:"fetched"`
	Error    string        `json:"error,omitempty"`
}

// Recorder persists task runs for later inspection.
type Recorder interface {
	RecordRun(ctx context.Context, evt *RunEvent) error
	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]RunEvent, error)
	Close() error
}

package recorder

import "context"

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ context.Context, _ *RunEvent) error { return nil }
func (n *NoopRecorder) RecentRuns(_ context.Context, _ int) ([]RunEvent, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }

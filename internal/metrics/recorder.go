package metrics

import "time"

// Recorder defines observability hooks for export runs.
type Recorder interface {
	ObserveBuildDuration(mode string, d time.Duration)
	ObserveRenderDuration(d time.Duration)
	IncEntry(kind, status string)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|aborted
	AddBytesWritten(n int64)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRenderDuration(time.Duration)        {}
func (NoopRecorder) IncEntry(string, string)                    {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) AddBytesWritten(int64)                      {}

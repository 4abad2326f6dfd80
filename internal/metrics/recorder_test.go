package metrics

import "time"

type testRecorder struct {
	builds   map[string]int
	renders  int
	entries  map[string]int
	outcomes map[string]int
	bytes    int64
}

func newTestRecorder() *testRecorder {
	return &testRecorder{builds: map[string]int{}, entries: map[string]int{}, outcomes: map[string]int{}}
}

func (t *testRecorder) ObserveBuildDuration(mode string, _ time.Duration) { t.builds[mode]++ }
func (t *testRecorder) ObserveRenderDuration(time.Duration)              { t.renders++ }
func (t *testRecorder) IncEntry(kind, status string)                     { t.entries[kind+"/"+status]++ }
func (t *testRecorder) IncBuildOutcome(outcome string)                   { t.outcomes[outcome]++ }
func (t *testRecorder) AddBytesWritten(n int64)                          { t.bytes += n }

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = newTestRecorder()
)

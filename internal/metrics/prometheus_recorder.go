package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration  *prom.HistogramVec
	renderDuration prom.Histogram
	entries        *prom.CounterVec
	buildOutcome   *prom.CounterVec
	bytesWritten   prom.Counter
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a private one, which keeps tests isolated.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "staticbuilder",
			Name:      "build_duration_seconds",
			Help:      "Duration of export runs by mode",
			Buckets:   prom.DefBuckets,
		}, []string{"mode"}),
		renderDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "staticbuilder",
			Name:      "render_duration_seconds",
			Help:      "Duration of individual page renders",
			Buckets:   prom.DefBuckets,
		}),
		entries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "staticbuilder",
			Name:      "entries_total",
			Help:      "Summary entries by kind and status",
		}, []string{"kind", "status"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "staticbuilder",
			Name:      "build_outcomes_total",
			Help:      "Export runs by final outcome",
		}, []string{"outcome"}),
		bytesWritten: prom.NewCounter(prom.CounterOpts{
			Namespace: "staticbuilder",
			Name:      "page_bytes_written_total",
			Help:      "Bytes of rendered page output written",
		}),
	}
	reg.MustRegister(pr.buildDuration, pr.renderDuration, pr.entries, pr.buildOutcome, pr.bytesWritten)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(mode string, d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncEntry(kind, status string) {
	if p == nil {
		return
	}
	p.entries.WithLabelValues(kind, status).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddBytesWritten(n int64) {
	if p == nil || n <= 0 {
		return
	}
	p.bytesWritten.Add(float64(n))
}

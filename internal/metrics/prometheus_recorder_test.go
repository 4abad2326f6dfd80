package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveBuildDuration("write", 500*time.Millisecond)
	pr.ObserveRenderDuration(20 * time.Millisecond)
	pr.IncEntry("page", "generated")
	pr.IncEntry("asset", "done")
	pr.IncBuildOutcome("success")
	pr.AddBytesWritten(1024)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	require.True(t, names["staticbuilder_entries_total"])
	require.True(t, names["staticbuilder_build_duration_seconds"])
	require.True(t, names["staticbuilder_page_bytes_written_total"])
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncEntry("page", "error")
	pr.ObserveBuildDuration("dry-run", time.Second)
	pr.AddBytesWritten(10)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncBuildOutcome("failed")

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `staticbuilder_build_outcomes_total{outcome="failed"} 1`)
}

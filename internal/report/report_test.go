package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/staticbuilder/internal/export"
)

func size(n int64) *int64 { return &n }

func sampleResult() *export.Result {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &export.Result{
		RunID:  "run-1",
		Target: "site",
		Write:  true,
		Start:  start,
		End:    start.Add(1500 * time.Millisecond),
		Entries: []export.Entry{
			{Kind: export.KindPage, Source: "content/home/default.md", Dest: "/srv/site/static/index.html", Status: export.StatusGenerated, Size: size(120)},
			{Kind: export.KindPage, Source: "content/team/module.team.md", Status: export.StatusIgnore, Reason: "module page"},
			{Kind: export.KindAsset, Source: "assets", Dest: "/srv/site/static/assets", Status: export.StatusDone, AssetType: export.AssetDir},
		},
	}
}

func TestNewReport(t *testing.T) {
	r := New(sampleResult())
	require.Equal(t, "write", r.Mode)
	require.Equal(t, "success", r.Outcome)
	require.Equal(t, int64(1500), r.DurationMS)
	require.Equal(t, map[string]int{"generated": 1, "ignore": 1, "done": 1}, r.Counts)
	require.Equal(t, "run=run-1 mode=write target=site outcome=success entries=3 done=1 generated=1 ignore=1 duration=1500ms", r.Summary())
}

func TestPersistWritesBothFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, Persist(fs, "/reports", sampleResult()))

	data, err := afero.ReadFile(fs, "/reports/build-report.json")
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Entries, 3)

	text, err := afero.ReadFile(fs, "/reports/build-report.txt")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(text), "run=run-1"))

	for _, tmp := range []string{"/reports/build-report.json.tmp", "/reports/build-report.txt.tmp"} {
		ok, err := afero.Exists(fs, tmp)
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestOutcomes(t *testing.T) {
	res := sampleResult()
	res.Entries = append(res.Entries, export.Entry{Kind: export.KindAsset, Source: "gone", Status: export.StatusIgnore, Reason: "source not found"})
	require.Equal(t, "warning", Outcome(res))

	res.Entries = append(res.Entries, export.Entry{Kind: export.KindPage, Status: export.StatusError})
	require.Equal(t, "failed", Outcome(res))

	res.Fatal = &export.FatalReport{RunID: "run-1"}
	require.Equal(t, "aborted", Outcome(res))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleResult(), "/srv/site/static"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	require.True(t, strings.HasPrefix(lines[0], "KIND"))
	require.Contains(t, lines[1], "static/index.html")
	require.NotContains(t, lines[1], "/srv/site/")
	require.Contains(t, lines[1], "120")
	require.Contains(t, lines[2], "module page")
	require.Contains(t, lines[4], "outcome=success")
}

func TestFatalWriter(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := FatalWriter{Fs: fs, Dir: "/reports"}
	w.HandleFatal(context.Background(), export.FatalReport{RunID: "run-2", InFlight: "content/crash/default.md", Cause: "boom"})

	data, err := afero.ReadFile(fs, "/reports/fatal-report.json")
	require.NoError(t, err)
	var decoded export.FatalReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "content/crash/default.md", decoded.InFlight)
	require.Equal(t, "boom", decoded.Cause)
}

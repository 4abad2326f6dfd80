// Package report turns export results into persisted and printed reports.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/staticbuilder/internal/export"
)

const (
	jsonName  = "build-report.json"
	textName  = "build-report.txt"
	fatalName = "fatal-report.json"
)

// Report is the serializable form of an export result.
type Report struct {
	RunID      string              `json:"run_id"`
	Mode       string              `json:"mode"`
	Target     string              `json:"target"`
	Outcome    string              `json:"outcome"`
	Start      time.Time           `json:"start"`
	End        time.Time           `json:"end"`
	DurationMS int64               `json:"duration_ms"`
	Counts     map[string]int      `json:"counts"`
	Entries    []export.Entry      `json:"entries"`
	Fatal      *export.FatalReport `json:"fatal,omitempty"`
}

// New builds the report of res.
func New(res *export.Result) *Report {
	counts := map[string]int{}
	for status, n := range Counts(res.Entries) {
		counts[string(status)] = n
	}
	entries := res.Entries
	if entries == nil {
		entries = []export.Entry{}
	}
	return &Report{
		RunID:      res.RunID,
		Mode:       res.Mode(),
		Target:     res.Target,
		Outcome:    Outcome(res),
		Start:      res.Start,
		End:        res.End,
		DurationMS: res.End.Sub(res.Start).Milliseconds(),
		Counts:     counts,
		Entries:    entries,
		Fatal:      res.Fatal,
	}
}

// Counts tallies entries by status.
func Counts(entries []export.Entry) map[export.Status]int {
	out := map[export.Status]int{}
	for _, e := range entries {
		out[e.Status]++
	}
	return out
}

// Outcome derives success, warning, failed or aborted for res.
func Outcome(res *export.Result) string {
	return res.Outcome()
}

// Summary returns a one-line human summary.
func (r *Report) Summary() string {
	keys := make([]string, 0, len(r.Counts))
	for k := range r.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, r.Counts[k]))
	}
	return fmt.Sprintf("run=%s mode=%s target=%s outcome=%s entries=%d %s duration=%dms",
		r.RunID, r.Mode, r.Target, r.Outcome, len(r.Entries), strings.Join(parts, " "), r.DurationMS)
}

// Persist writes build-report.json and build-report.txt into dir. Each file
// is written to a temporary name first and renamed into place.
func Persist(fs afero.Fs, dir string, res *export.Result) error {
	r := New(res)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := writeAtomic(fs, filepath.Join(dir, jsonName), jb); err != nil {
		return err
	}
	return writeAtomic(fs, filepath.Join(dir, textName), []byte(r.Summary()+"\n"))
}

func writeAtomic(fs afero.Fs, path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

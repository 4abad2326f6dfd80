package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/staticbuilder/internal/export"
	"git.home.luguber.info/inful/staticbuilder/internal/logfields"
)

// FatalWriter persists the report of an aborted run as fatal-report.json.
type FatalWriter struct {
	Fs     afero.Fs
	Dir    string
	Logger *slog.Logger
}

var _ export.FatalHandler = FatalWriter{}

// HandleFatal logs report and writes it to Dir. Failures to write are
// logged; the run is already lost.
func (w FatalWriter) HandleFatal(ctx context.Context, report export.FatalReport) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	export.LogFatalHandler{Logger: logger}.HandleFatal(ctx, report)

	if w.Fs == nil || w.Dir == "" {
		return
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err == nil {
		err = w.Fs.MkdirAll(w.Dir, 0o755)
	}
	if err == nil {
		err = writeAtomic(w.Fs, filepath.Join(w.Dir, fatalName), data)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to persist fatal report", logfields.RunID(report.RunID), logfields.Error(err))
	}
}

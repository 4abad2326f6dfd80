package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/staticbuilder/internal/config"
	"git.home.luguber.info/inful/staticbuilder/internal/content"
	derrors "git.home.luguber.info/inful/staticbuilder/internal/errors"
	"git.home.luguber.info/inful/staticbuilder/internal/export"
	"git.home.luguber.info/inful/staticbuilder/internal/history"
	"git.home.luguber.info/inful/staticbuilder/internal/logfields"
	"git.home.luguber.info/inful/staticbuilder/internal/metrics"
	"git.home.luguber.info/inful/staticbuilder/internal/notify"
	"git.home.luguber.info/inful/staticbuilder/internal/render"
	"git.home.luguber.info/inful/staticbuilder/internal/report"
	"git.home.luguber.info/inful/staticbuilder/internal/runlock"
)

// App wires an export builder to its reporting sinks.
type App struct {
	cfg       *config.Config
	fs        afero.Fs
	builder   *export.Builder
	history   *history.Store
	publisher notify.Publisher
	out       io.Writer
	logger    *slog.Logger
}

// NewApp builds the export pipeline described by cfg on fs. Entry tables are
// printed to out when it is not nil.
func NewApp(ctx context.Context, cfg *config.Config, fs afero.Fs, recorder metrics.Recorder, out io.Writer, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store, err := content.NewStore(fs, cfg.ContentRoot(), cfg.ProjectPath(), cfg.LanguageCodes(), cfg.DefaultLanguage())
	if err != nil {
		return nil, derrors.ConfigurationError(err.Error())
	}
	renderer := render.New(fs, cfg.TemplatesRoot(), store, render.Site{Title: cfg.SiteTitle, Languages: cfg.LanguageCodes()})

	builder, err := export.NewBuilder(fs, store, renderer, cfg.ExportOptions())
	if err != nil {
		return nil, err
	}
	builder.WithLogger(logger).
		WithRecorder(recorder).
		WithFatalHandler(report.FatalWriter{Fs: fs, Dir: cfg.ReportRoot(), Logger: logger})

	app := &App{cfg: cfg, fs: fs, builder: builder, publisher: notify.Noop{}, out: out, logger: logger}

	if cfg.History.Enabled {
		if app.history, err = history.Open(cfg.HistoryPath()); err != nil {
			return nil, derrors.ConfigurationError(fmt.Sprintf("open history: %v", err))
		}
	}
	if cfg.Notify.Enabled {
		pub, err := notify.NewNATSPublisher(ctx, cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			logger.WarnContext(ctx, "Run events disabled", logfields.Error(err))
		} else {
			app.publisher = pub
		}
	}
	return app, nil
}

// Export runs target. Write runs hold the output directory lock and feed the
// report directory, the history and the event stream. Entries are printed
// for both modes.
func (a *App) Export(ctx context.Context, target export.Target, write bool) (*export.Result, error) {
	if write {
		lock, err := runlock.Acquire(a.cfg.LockPath())
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				a.logger.WarnContext(ctx, "Failed to release output lock", logfields.Error(err))
			}
		}()
	}

	res, runErr := a.builder.Run(ctx, target, write)
	if res == nil {
		return nil, runErr
	}

	if write {
		if err := report.Persist(a.fs, a.cfg.ReportRoot(), res); err != nil {
			a.logger.WarnContext(ctx, "Failed to persist build report", logfields.RunID(res.RunID), logfields.Error(err))
		}
		if a.history != nil {
			if err := a.history.Record(ctx, res); err != nil {
				a.logger.WarnContext(ctx, "Failed to record run history", logfields.RunID(res.RunID), logfields.Error(err))
			}
		}
		if err := a.publisher.Publish(ctx, notify.NewRunEvent(res)); err != nil {
			a.logger.WarnContext(ctx, "Failed to publish run event", logfields.RunID(res.RunID), logfields.Error(err))
		}
	}

	if a.out != nil {
		if err := report.WriteTable(a.out, res, a.builder.OutputRoot()); err != nil {
			return res, fmt.Errorf("print report: %w", err)
		}
	}
	if runErr != nil {
		return res, runErr
	}
	if res.Outcome() == "failed" {
		return res, derrors.New(derrors.CategoryRender, derrors.SeverityError, "some entries failed, see the report")
	}
	return res, nil
}

// Close releases the history database and the event connection.
func (a *App) Close() error {
	var firstErr error
	if a.history != nil {
		firstErr = a.history.Close()
	}
	if err := a.publisher.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

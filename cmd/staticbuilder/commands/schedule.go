package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/staticbuilder/internal/config"
	"git.home.luguber.info/inful/staticbuilder/internal/export"
	"git.home.luguber.info/inful/staticbuilder/internal/logfields"
	"git.home.luguber.info/inful/staticbuilder/internal/metrics"
	"git.home.luguber.info/inful/staticbuilder/internal/schedule"
)

// ScheduleCmd implements the 'schedule' command.
type ScheduleCmd struct {
	Interval  time.Duration `help:"Rebuild interval, overrides the configured schedule"`
	Cron      string        `help:"Cron expression, overrides the configured schedule"`
	NoInitial bool          `name:"no-initial" help:"Wait for the first slot instead of building at start"`
}

func (s *ScheduleCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	sched := cfg.Schedule
	if s.Interval > 0 || s.Cron != "" {
		sched = config.ScheduleConfig{Interval: s.Interval, Cron: s.Cron}
	}
	if !sched.Scheduled() {
		return fmt.Errorf("no schedule configured: set schedule.interval or schedule.cron, or pass --interval or --cron")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := g.Logger
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := NewApp(ctx, cfg, afero.NewOsFs(), metrics.NewPrometheusRecorder(reg), nil, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	scheduler, err := schedule.New(logger)
	if err != nil {
		return err
	}
	if _, err := scheduler.Add(ctx, "site-export", sched.Interval, sched.Cron, !s.NoInitial, func(ctx context.Context) error {
		_, err := app.Export(ctx, export.SiteTarget(), true)
		return err
	}); err != nil {
		return err
	}

	var srv *http.Server
	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
		srv = &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		logger.Info("Metrics endpoint listening", "addr", cfg.Metrics.Listen)
	}

	scheduler.Start()
	logger.Info("Scheduled exports started", "schedule", sched.String())
	if next, err := scheduler.NextRun("site-export"); err == nil {
		logger.Info("Next export", "at", next.Format(time.RFC3339))
	}

	<-ctx.Done()
	logger.Info("Shutting down scheduler")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
	}
	return scheduler.Stop()
}

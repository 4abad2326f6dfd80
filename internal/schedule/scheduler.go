// Package schedule runs exports periodically.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/staticbuilder/internal/logfields"
)

// Task is the scheduled work. Its error is logged; the schedule continues.
type Task func(ctx context.Context) error

// Scheduler wraps a gocron scheduler. Jobs run in singleton mode: a run
// that is still busy when its next slot arrives makes that slot be skipped.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// New creates a scheduler.
func New(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Add schedules task every interval, or on the cron expression when cron is
// set. With immediate the first run starts right away. It returns the job id.
func (s *Scheduler) Add(ctx context.Context, name string, interval time.Duration, cron string, immediate bool, task Task) (string, error) {
	var def gocron.JobDefinition
	switch {
	case cron != "" && interval > 0:
		return "", errors.New("schedule takes either an interval or a cron expression")
	case cron != "":
		def = gocron.CronJob(cron, false)
	case interval > 0:
		def = gocron.DurationJob(interval)
	default:
		return "", errors.New("schedule needs an interval or a cron expression")
	}

	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if immediate {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	job, err := s.scheduler.NewJob(def, gocron.NewTask(s.execute, ctx, name, task), opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create scheduled job: %w", err)
	}
	return job.ID().String(), nil
}

func (s *Scheduler) execute(ctx context.Context, name string, task Task) {
	if ctx.Err() != nil {
		return
	}
	started := time.Now()
	s.logger.InfoContext(ctx, "Executing scheduled export", slog.String("job", name))
	if err := task(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled export failed",
			slog.String("job", name),
			logfields.Duration(time.Since(started)),
			logfields.Error(err))
		return
	}
	s.logger.InfoContext(ctx, "Scheduled export finished", slog.String("job", name), logfields.Duration(time.Since(started)))
}

// NextRun returns the next scheduled time of the job named name.
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	for _, j := range s.scheduler.Jobs() {
		if j.Name() == name {
			return j.NextRun()
		}
	}
	return time.Time{}, fmt.Errorf("no job named %q", name)
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

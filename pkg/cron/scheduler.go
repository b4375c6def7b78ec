// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/statement-checks/pkg/storage"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	spool    storage.Storage
	schedule string
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler that sweeps spool files older
// than maxAge on the given 5-field cron schedule.
func NewScheduler(spool storage.Storage, schedule string, maxAge time.Duration, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		spool:    spool,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweepSpool)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow runs the spool sweep synchronously and returns the number of files removed.
func (s *Scheduler) RunNow() int {
	return s.sweep()
}

func (s *Scheduler) sweepSpool() {
	s.sweep()
}

// sweep removes spool files left behind by interrupted requests.
func (s *Scheduler) sweep() int {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.spool.Sweep(ctx, s.maxAge)
	if err != nil {
		s.logger.Error("failed to sweep spool",
			slog.Int("removed", removed),
			slog.Any("error", err),
		)
		return removed
	}

	if removed > 0 {
		s.logger.Info("spool sweep completed",
			slog.Int("removed", removed),
			slog.Duration("max_age", s.maxAge),
		)
	}
	return removed
}

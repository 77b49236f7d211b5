package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsChecker/internal/ports"
)

// Scheduler wires the cron driver with the monitor use case.
type Scheduler struct {
	driver  ports.Scheduler
	monitor *Monitor
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring monitor run.
func NewScheduler(driver ports.Scheduler, monitor *Monitor, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, monitor: monitor, logger: logger}
}

// Start registers the monitor with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.monitor == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.monitor.RunOnce(ctx, trigger); err != nil && s.logger != nil {
			s.logger.Error("monitor run failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"NewsChecker/internal/ports"
)

// CronScheduler runs a job on a standard five-field cron expression.
type CronScheduler struct {
	spec     string
	location *time.Location

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler validates the expression and binds it to loc (UTC when nil).
func NewCronScheduler(spec string, loc *time.Location) (*CronScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", spec, err)
	}
	return &CronScheduler{spec: spec, location: loc}, nil
}

// Start registers job and begins firing it. Runs never overlap; a run still in
// progress causes the next tick to be skipped. The scheduler stops when ctx is done.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}

	c.cron = cron.New(
		cron.WithLocation(c.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.cron.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	c.cron.Start()
	c.started = true

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()

	return nil
}

// Stop halts the scheduler and waits for a running job up to ctx's deadline.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = false
	done := c.cron.Stop()
	c.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next reports when the job fires after t.
func (c *CronScheduler) Next(t time.Time) time.Time {
	schedule, err := cron.ParseStandard(c.spec)
	if err != nil {
		return time.Time{}
	}
	return schedule.Next(t.In(c.location))
}

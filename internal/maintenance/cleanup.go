// Package maintenance runs periodic housekeeping: purging expired sessions
// and dropping idle rate limiter buckets.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
)

const defaultSchedule = "@hourly"

type SessionPurger interface {
	DeleteExpired() (int64, error)
}

type LimiterPruner interface {
	Cleanup() int
}

type Cleaner struct {
	sessions SessionPurger
	limiter  LimiterPruner
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger
}

type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance.
func WithCron(c *cron.Cron) Option {
	return func(cl *Cleaner) {
		if c != nil {
			cl.cron = c
		}
	}
}

// WithSchedule overrides the cron spec the cleanup runs on.
func WithSchedule(spec string) Option {
	return func(cl *Cleaner) {
		if spec != "" {
			cl.schedule = spec
		}
	}
}

// NewCleaner builds a Cleaner. A nil sessions or limiter skips that job.
func NewCleaner(sessions SessionPurger, limiter LimiterPruner, logger *slog.Logger, opts ...Option) *Cleaner {
	c := &Cleaner{
		sessions: sessions,
		limiter:  limiter,
		schedule: defaultSchedule,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cron == nil {
		c.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return c
}

// Start schedules RunOnce and starts the cron loop.
func (c *Cleaner) Start() error {
	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(); err != nil {
			c.logger.Warn("maintenance run failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule cleanup %q: %w", c.schedule, err)
	}
	c.cron.Start()
	c.logger.Info("maintenance scheduled", "schedule", c.schedule)
	return nil
}

// Stop halts the scheduler. The returned context is done once a running job
// has finished.
func (c *Cleaner) Stop() context.Context {
	return c.cron.Stop()
}

// RunOnce performs every cleanup job, continuing past failures.
func (c *Cleaner) RunOnce() error {
	var errs error
	if c.sessions != nil {
		n, err := c.sessions.DeleteExpired()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("purge sessions: %w", err))
		} else if n > 0 {
			c.logger.Info("expired sessions removed", "count", n)
		}
	}
	if c.limiter != nil {
		if n := c.limiter.Cleanup(); n > 0 {
			c.logger.Debug("idle rate limit buckets removed", "count", n)
		}
	}
	return errs
}

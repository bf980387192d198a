package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers periodic configuration reloads on a cron schedule.
// Useful when the rule file is rendered by an external system that does not
// touch it atomically, or when clients should be rebuilt periodically.
type Scheduler struct {
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewScheduler creates a scheduler for the given cron expression. Standard
// five-field expressions and descriptors such as "@every 10m" are accepted.
func NewScheduler(schedule string) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "config.scheduler"),
	}
}

// Start begins scheduled reloads and returns immediately. The scheduler stops
// when the context is cancelled. An empty schedule is a no-op.
func (s *Scheduler) Start(ctx context.Context, onReload func() error) error {
	if s.schedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.logger.Info("scheduled configuration reload")
		if err := onReload(); err != nil {
			s.logger.Error("scheduled reload failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reload: %w", err)
	}

	s.cron.Start()
	s.logger.Info("reload scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}

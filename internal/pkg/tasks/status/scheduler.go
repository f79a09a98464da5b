package status

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/kateshostak/taskman/internal/pkg/logging"
)

type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Spec is a standard five field cron expression.
	Spec string `mapstructure:"spec" validate:"required"`
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		Spec:    "0 * * * *",
	}
}

// Scheduler fires an Updater on a cron schedule. A failed firing is logged
// and dropped; the next tick runs as usual.
type Scheduler struct {
	cron    *cron.Cron
	updater *Updater
	log     logging.Logger
}

func NewScheduler(cfg SchedulerConfig, updater *Updater) (*Scheduler, error) {
	log := logging.GetLogger("tasks.status.scheduler")

	s := &Scheduler{
		cron: cron.New(cron.WithLogger(
			cron.PrintfLogger(logging.GetLogLogger(log, logging.LevelDebug)),
		)),
		updater: updater,
		log:     log,
	}

	if _, err := s.cron.AddFunc(cfg.Spec, s.fire); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Spec, err)
	}

	return s, nil
}

func (s *Scheduler) fire() {
	ctx := context.Background()

	n, err := s.updater.Run(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "status update failed", "error", err)
		return
	}

	s.log.InfoContext(ctx, "status update finished", "updated", n)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the schedule and returns a context that is done once a running
// firing has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

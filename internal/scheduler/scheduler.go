package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dsyryh/feedsync/internal/service/pipeline"
)

// runTimeout bounds a single scheduled feed update.
const runTimeout = 10 * time.Minute

// Scheduler triggers feed updates on a cron schedule. Schedules are expected
// to be sparse enough that runs never overlap; there is no internal locking.
type Scheduler struct {
	cron     *cron.Cron
	pipe     *pipeline.Pipeline
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. schedule is a standard
// five-field cron expression.
func NewScheduler(schedule string, pipe *pipeline.Pipeline, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		pipe:     pipe,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the feed update job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runOnce() {
	s.logger.Info("scheduled feed update starting")
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := s.pipe.Run(ctx); err != nil {
		s.logger.Error("scheduled feed update failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled feed update finished")
}

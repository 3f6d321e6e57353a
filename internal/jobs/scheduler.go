// Package jobs runs the periodic booking sweep and class occurrence generation.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

type Generator interface {
	GenerateUpcomingOccurrences(ctx context.Context, weeks int) (int, error)
}

type Config struct {
	SweepSchedule      string
	OccurrenceSchedule string
	OccurrenceWeeks    int
	// Timeout bounds a single run.
	Timeout time.Duration
}

// Scheduler owns the cron instance. Both jobs are idempotent, so an overlapping
// run is skipped rather than queued.
type Scheduler struct {
	cron      *cron.Cron
	sweeper   Sweeper
	generator Generator
	cfg       Config
	logger    *zap.Logger
}

func NewScheduler(sweeper Sweeper, generator Generator, cfg Config, logger *zap.Logger) (*Scheduler, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}

	cl := cronLogger{logger.Sugar()}
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		sweeper:   sweeper,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}

	if _, err := s.cron.AddFunc(cfg.SweepSchedule, func() { s.RunSweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
	}
	if _, err := s.cron.AddFunc(cfg.OccurrenceSchedule, func() { s.RunGeneration(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid occurrence schedule %q: %w", cfg.OccurrenceSchedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Job scheduler started",
		zap.String("sweep_schedule", s.cfg.SweepSchedule),
		zap.String("occurrence_schedule", s.cfg.OccurrenceSchedule),
	)
}

// Stop waits for running jobs, or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Job scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
	}
}

func (s *Scheduler) RunSweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	n, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("Expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Expiry sweep finished", zap.Int("expired", n))
	}
}

func (s *Scheduler) RunGeneration(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	n, err := s.generator.GenerateUpcomingOccurrences(ctx, s.cfg.OccurrenceWeeks)
	if err != nil {
		s.logger.Error("Occurrence generation failed", zap.Error(err))
		return
	}
	s.logger.Info("Occurrence generation finished", zap.Int("upserted", n), zap.Int("weeks", s.cfg.OccurrenceWeeks))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Package scheduler runs the periodic housekeeping jobs of the game server.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"example.com/candle-predict/internal/ranking"
	"example.com/candle-predict/internal/recorder"
)

// Default job specs (cron with seconds).
const (
	DefaultCleanupSpec = "@every 1m"
	DefaultPruneSpec   = "0 30 3 * * *"
	DefaultRankingSpec = "@every 5m"
	DefaultRetention   = 30 * 24 * time.Hour
)

// SessionCleaner drops idle sessions.
type SessionCleaner interface {
	CleanupIdle() int
}

// LeaderboardSampler snapshots and saves the leaderboard.
type LeaderboardSampler interface {
	Sample() *ranking.Snapshot
	Persist() error
}

// Specs holds the cron expressions of the registered jobs.
type Specs struct {
	Cleanup   string
	Prune     string
	Ranking   string
	Retention time.Duration
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	Cron        *cron.Cron
	Sessions    SessionCleaner
	Recorder    recorder.Recorder
	Leaderboard LeaderboardSampler // optional
	Ctx         context.Context

	retention time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// NewScheduler creates a scheduler. rec may be nil when no recorder is configured.
func NewScheduler(ctx context.Context, sessions SessionCleaner, rec recorder.Recorder, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Sessions:  sessions,
		Recorder:  rec,
		Ctx:       ctx,
		retention: DefaultRetention,
		now:       time.Now,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the session cleanup, recorder prune and leaderboard jobs.
// Empty specs fall back to the defaults.
func (s *Scheduler) RegisterAll(specs Specs) error {
	if specs.Cleanup == "" {
		specs.Cleanup = DefaultCleanupSpec
	}
	if specs.Prune == "" {
		specs.Prune = DefaultPruneSpec
	}
	if specs.Ranking == "" {
		specs.Ranking = DefaultRankingSpec
	}
	if specs.Retention > 0 {
		s.retention = specs.Retention
	}

	if s.Sessions != nil {
		if _, err := s.Cron.AddFunc(specs.Cleanup, s.guard("cleanup", s.cleanupTask)); err != nil {
			return fmt.Errorf("register cleanup task: %w", err)
		}
	}
	if s.Recorder != nil {
		if _, err := s.Cron.AddFunc(specs.Prune, s.guard("prune", s.pruneTask)); err != nil {
			return fmt.Errorf("register prune task: %w", err)
		}
	}
	if s.Leaderboard != nil {
		if _, err := s.Cron.AddFunc(specs.Ranking, s.guard("ranking", s.rankingTask)); err != nil {
			return fmt.Errorf("register ranking task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// guard keeps a panicking job from taking the process down.
func (s *Scheduler) guard(name string, job func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Str("job", name).Interface("panic", r).Msg("job panicked")
			}
		}()
		job()
	}
}

func (s *Scheduler) cleanupTask() {
	if n := s.Sessions.CleanupIdle(); n > 0 {
		s.logger.Info().Int("removed", n).Msg("idle sessions removed")
	}
}

func (s *Scheduler) pruneTask() {
	before := s.now().Add(-s.retention)
	n, err := s.Recorder.Prune(s.Ctx, before)
	if err != nil {
		s.logger.Error().Err(err).Msg("prune rounds failed")
		return
	}
	s.logger.Info().Int64("deleted", n).Time("before", before).Msg("old rounds pruned")
}

func (s *Scheduler) rankingTask() {
	snap := s.Leaderboard.Sample()
	if err := s.Leaderboard.Persist(); err != nil {
		s.logger.Error().Err(err).Msg("persist leaderboard failed")
		return
	}
	s.logger.Debug().Int("players", len(snap.Items)).Msg("leaderboard sampled")
}

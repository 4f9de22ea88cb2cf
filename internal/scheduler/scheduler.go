// Package scheduler runs periodic dataset refreshes.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-metrics/internal/models"
)

// Refresher reloads a season and warms the report cache.
type Refresher interface {
	Refresh(ctx context.Context, season int) (*models.Dataset, error)
	Precompute(ctx context.Context, filters ...models.Filter) error
}

// DefaultRefreshTimeout bounds one refresh run.
const DefaultRefreshTimeout = 15 * time.Minute

// Scheduler manages scheduled refresh jobs
type Scheduler struct {
	cron           *cron.Cron
	refresher      Refresher
	logger         *logrus.Logger
	mu             sync.RWMutex
	isRunning      bool
	jobIDs         []cron.EntryID
	refreshTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(refresher Refresher, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:           cron.New(cron.WithLocation(time.UTC)),
		refresher:      refresher,
		logger:         logger,
		jobIDs:         make([]cron.EntryID, 0),
		refreshTimeout: DefaultRefreshTimeout,
	}
}

// ScheduleRefresh schedules a reload of season followed by precomputation of
// the given filter sets.
func (s *Scheduler) ScheduleRefresh(cronExpression string, season int, filters []models.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
		defer cancel()

		if err := s.RunRefresh(ctx, season, filters); err != nil {
			s.logger.WithError(err).WithField("season", season).Error("Scheduled refresh failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":   cronExpression,
		"season": season,
	}).Info("Scheduled dataset refresh")

	return nil
}

// RunRefresh performs one refresh immediately.
func (s *Scheduler) RunRefresh(ctx context.Context, season int, filters []models.Filter) error {
	start := time.Now()
	s.logger.WithField("season", season).Info("Starting dataset refresh")

	d, err := s.refresher.Refresh(ctx, season)
	if err != nil {
		return fmt.Errorf("refresh season %d: %w", season, err)
	}
	if err := s.refresher.Precompute(ctx, filters...); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"season":      season,
		"games":       len(d.Games),
		"filters":     len(filters),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Dataset refresh completed")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(jobID cron.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}

	s.cron.Remove(jobID)
	for i, id := range s.jobIDs {
		if id == jobID {
			s.jobIDs = append(s.jobIDs[:i], s.jobIDs[i+1:]...)
			break
		}
	}
	s.logger.WithField("job_id", jobID).Info("Removed job")

	return nil
}

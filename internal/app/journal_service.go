package app

import (
	"context"
	"fmt"
	"time"

	"homework_status_bot/internal/domain/poll"

	"github.com/sirupsen/logrus"
)

// JournalService is the diagnostics sink for poll cycles.
// Every record is logged; it is also stored when a repository is configured.
type JournalService struct {
	repo      poll.Repository // nil when no database is configured
	retention time.Duration
	logger    *logrus.Entry
	now       func() time.Time
}

func NewJournalService(repo poll.Repository, retention time.Duration, logger *logrus.Entry) *JournalService {
	return &JournalService{
		repo:      repo,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Observe implements CycleObserver. Storage failures are logged and dropped.
func (s *JournalService) Observe(ctx context.Context, cycle *poll.Cycle) {
	fields := logrus.Fields{
		"phase":         cycle.Phase,
		"outcome":       cycle.Outcome,
		"cursor_before": cycle.CursorBefore,
		"cursor_after":  cycle.CursorAfter,
		"sent":          cycle.Sent,
		"advanced":      cycle.Outcome.Advanced(),
		"duration":      cycle.Duration.String(),
	}
	if cycle.Kind != "" {
		fields["kind"] = cycle.Kind
	}
	entry := s.logger.WithFields(fields)
	if cycle.Kind != "" {
		entry.Warn("Poll cycle finished with error")
	} else {
		entry.Info("Poll cycle finished")
	}

	if s.repo == nil {
		return
	}
	if err := s.repo.SaveCycle(ctx, cycle); err != nil {
		s.logger.WithError(err).Error("Failed to store poll cycle in journal")
	}
}

// LastCycle returns the most recent journal record, or nil when there is none
// or no repository is configured. It is informational only.
func (s *JournalService) LastCycle(ctx context.Context) (*poll.Cycle, error) {
	if s.repo == nil {
		return nil, nil
	}
	cycles, err := s.repo.ListRecentCycles(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read poll journal: %w", err)
	}
	if len(cycles) == 0 {
		return nil, nil
	}
	return cycles[0], nil
}

// Purge removes journal rows older than the retention window.
func (s *JournalService) Purge(ctx context.Context) (int64, error) {
	if s.repo == nil {
		return 0, nil
	}
	cutoff := s.now().Add(-s.retention)
	removed, err := s.repo.PurgeCyclesBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge poll journal: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"removed": removed,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("Poll journal purged")
	return removed, nil
}

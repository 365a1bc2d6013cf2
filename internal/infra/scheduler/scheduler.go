package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const purgeTimeout = 1 * time.Minute

// Purger removes expired journal entries.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// JournalScheduler runs housekeeping for the poll journal on a cron schedule.
type JournalScheduler struct {
	cronEngine    *cron.Cron
	purger        Purger
	logger        *logrus.Entry
	cronSpecPurge string
}

func NewJournalScheduler(purger Purger, logger *logrus.Entry, cronSpecPurge string) *JournalScheduler {
	return &JournalScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // Use server's local time for cron
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		purger:        purger,
		logger:        logger,
		cronSpecPurge: cronSpecPurge, // e.g., "0 3 * * *" (03:00 daily)
	}
}

// Start registers the jobs and starts the cron engine.
func (s *JournalScheduler) Start() error {
	s.logger.Info("Starting journal scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecPurge, s.runPurge); err != nil {
		return fmt.Errorf("could not add journal purge cron job %q: %w", s.cronSpecPurge, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpecPurge).Info("Journal scheduler started.")
	return nil
}

func (s *JournalScheduler) runPurge() {
	s.logger.Info("Cron job triggered for journal purge.")
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()
	if _, err := s.purger.Purge(ctx); err != nil {
		s.logger.WithError(err).Error("Error during journal purge")
	}
}

func (s *JournalScheduler) Stop() {
	s.logger.Info("Stopping journal scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Journal scheduler gracefully stopped.")
}

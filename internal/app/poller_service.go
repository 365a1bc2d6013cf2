// internal/app/poller_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/domain/poll"

	"github.com/sirupsen/logrus"
)

// CycleObserver receives the diagnostic record of every finished cycle.
// It must not influence the loop.
type CycleObserver interface {
	Observe(ctx context.Context, cycle *poll.Cycle)
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration)

// PollerConfig carries the loop settings resolved at startup.
type PollerConfig struct {
	Interval time.Duration
	Epoch    homework.Cursor
}

// PollerService owns the poll cursor and the last sent report.
// It is not safe for concurrent use: exactly one cycle runs at a time.
type PollerService struct {
	fetcher  homework.Fetcher
	notifier homework.Notifier
	observer CycleObserver
	logger   *logrus.Entry
	interval time.Duration
	sleep    SleepFunc
	now      func() time.Time

	cursor homework.Cursor
	report string
}

func NewPollerService(
	fetcher homework.Fetcher,
	notifier homework.Notifier,
	observer CycleObserver, // may be nil
	cfg PollerConfig,
	logger *logrus.Entry,
) *PollerService {
	return &PollerService{
		fetcher:  fetcher,
		notifier: notifier,
		observer: observer,
		logger:   logger,
		interval: cfg.Interval,
		sleep:    sleepContext,
		now:      time.Now,
		cursor:   cfg.Epoch,
	}
}

// Cursor returns the current poll cursor.
func (s *PollerService) Cursor() homework.Cursor {
	return s.cursor
}

// Report returns the last successfully delivered text, empty before the first send.
func (s *PollerService) Report() string {
	return s.report
}

// Run executes cycles until ctx is cancelled. Every cycle, however it ends,
// is followed by exactly one wait of the configured interval.
func (s *PollerService) Run(ctx context.Context) {
	s.logger.WithFields(logrus.Fields{
		"cursor":   s.cursor,
		"interval": s.interval.String(),
	}).Info("Poll loop started")

	for ctx.Err() == nil {
		s.tick(ctx)
	}
	s.logger.WithField("cursor", s.cursor).Info("Poll loop stopped")
}

func (s *PollerService) tick(ctx context.Context) {
	defer s.sleep(ctx, s.interval)
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", fmt.Sprint(r)).Error("Poll cycle aborted unexpectedly")
		}
	}()
	s.RunCycle(ctx)
}

// RunCycle performs a single fetch-validate-format-decide-notify pass and
// returns its diagnostic record. It never sleeps.
func (s *PollerService) RunCycle(ctx context.Context) *poll.Cycle {
	cycle := &poll.Cycle{
		StartedAt:    s.now(),
		CursorBefore: s.cursor,
	}
	s.execute(ctx, cycle)
	cycle.CursorAfter = s.cursor
	cycle.Duration = s.now().Sub(cycle.StartedAt)

	if s.observer != nil {
		s.observer.Observe(ctx, cycle)
	}
	return cycle
}

func (s *PollerService) execute(ctx context.Context, cycle *poll.Cycle) {
	log := s.logger.WithField("cursor", s.cursor)

	// 1. Fetching
	cycle.Phase = poll.PhaseFetching
	payload, err := s.fetcher.Fetch(ctx, s.cursor)
	if err != nil {
		s.handleFailure(ctx, cycle, err)
		return
	}

	// 2. Validating
	cycle.Phase = poll.PhaseValidating
	next, hasNext, err := homework.ExtractCursor(payload)
	if err != nil {
		s.handleFailure(ctx, cycle, err)
		return
	}
	if !hasNext {
		next = s.cursor
	}

	records, err := homework.ValidateResponse(payload)
	var text string
	switch {
	case homework.KindOf(err) == homework.KindEmptyAnswer:
		log.WithError(err).Debug("Empty answer from API, treating as no news")
		text = homework.NoNewsReport
	case err != nil:
		s.handleFailure(ctx, cycle, err)
		return
	case len(records) == 0:
		log.Debug("No submission updates since cursor")
		s.advance(next)
		cycle.Outcome = poll.OutcomeNothingNew
		return
	default:
		// 3. Formatting: only the newest submission is reported.
		cycle.Phase = poll.PhaseFormatting
		if len(records) > 1 {
			log.WithField("ignored", len(records)-1).Debug("Several submissions changed, reporting the newest only")
		}
		text, err = homework.FormatStatus(records[0])
		if err != nil {
			s.handleFailure(ctx, cycle, err)
			return
		}
	}

	// 4. Deciding
	cycle.Phase = poll.PhaseDeciding
	if text == s.report {
		log.Debug("Status unchanged since last report")
		s.advance(next)
		cycle.Outcome = poll.OutcomeUnchanged
		return
	}

	// 5. Notifying
	cycle.Phase = poll.PhaseNotifying
	if err := s.notifier.Send(ctx, text); err != nil {
		cycle.Outcome = poll.OutcomeSendFailed
		cycle.Kind = homework.KindSendFailure
		cycle.ErrorMessage = err.Error()
		log.WithError(err).Error("Failed to send status notification, will retry next cycle")
		return
	}
	cycle.Sent = true
	s.report = text
	s.advance(next)
	cycle.Outcome = poll.OutcomeNotified
	log.WithField("next_cursor", next).Info("Status notification sent")
}

// handleFailure is the error path: report the diagnostic once per distinct text.
// The cursor never moves here.
func (s *PollerService) handleFailure(ctx context.Context, cycle *poll.Cycle, err error) {
	kind := homework.KindOf(err)
	cycle.Kind = kind
	cycle.ErrorMessage = err.Error()

	log := s.logger.WithFields(logrus.Fields{
		"cursor": s.cursor,
		"phase":  cycle.Phase,
		"kind":   kind,
	}).WithError(err)
	log.Error("Poll cycle failed")

	text := diagnosticText(kind, err)
	if text == s.report {
		cycle.Outcome = poll.OutcomeErrorSuppressed
		log.Debug("Same failure already reported, not sending again")
		return
	}
	if sendErr := s.notifier.Send(ctx, text); sendErr != nil {
		cycle.Outcome = poll.OutcomeSendFailed
		log.WithField("send_error", sendErr.Error()).Error("Failed to report failure to chat")
		return
	}
	cycle.Sent = true
	s.report = text
	cycle.Outcome = poll.OutcomeErrorReported
}

func (s *PollerService) advance(next homework.Cursor) {
	s.cursor = next
}

func diagnosticText(kind homework.Kind, err error) string {
	return fmt.Sprintf("Сбой в работе программы [%s]: %v", kind, err)
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

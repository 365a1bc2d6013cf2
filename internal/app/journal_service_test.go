package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/domain/poll"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryJournal struct {
	saved     []*poll.Cycle
	saveErr   error
	listErr   error
	cutoff    time.Time
	purgeErr  error
	purgeRows int64
}

func (m *memoryJournal) EnsureSchema(context.Context) error { return nil }

func (m *memoryJournal) SaveCycle(_ context.Context, c *poll.Cycle) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, c)
	return nil
}

func (m *memoryJournal) ListRecentCycles(_ context.Context, limit int) ([]*poll.Cycle, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if limit > len(m.saved) {
		limit = len(m.saved)
	}
	return m.saved[:limit], nil
}

func (m *memoryJournal) PurgeCyclesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.cutoff = cutoff
	return m.purgeRows, m.purgeErr
}

func TestJournalObserveLogsAndStores(t *testing.T) {
	logger, hook := test.NewNullLogger()
	repo := &memoryJournal{}
	s := NewJournalService(repo, time.Hour, logrus.NewEntry(logger))

	s.Observe(context.Background(), &poll.Cycle{Phase: poll.PhaseNotifying, Outcome: poll.OutcomeNotified, Sent: true})
	s.Observe(context.Background(), &poll.Cycle{Phase: poll.PhaseFetching, Outcome: poll.OutcomeErrorReported, Kind: homework.KindBadStatus})

	require.Len(t, repo.saved, 2)
	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, poll.OutcomeNotified, entries[0].Data["outcome"])
	assert.Equal(t, true, entries[0].Data["advanced"])
	assert.Equal(t, false, entries[1].Data["advanced"])
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, homework.KindBadStatus, entries[1].Data["kind"])
}

func TestJournalObserveSwallowsStorageErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	repo := &memoryJournal{saveErr: errors.New("connection reset")}
	s := NewJournalService(repo, time.Hour, logrus.NewEntry(logger))

	assert.NotPanics(t, func() {
		s.Observe(context.Background(), &poll.Cycle{Outcome: poll.OutcomeUnchanged})
	})
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestJournalObserveWithoutRepository(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := NewJournalService(nil, time.Hour, logrus.NewEntry(logger))

	s.Observe(context.Background(), &poll.Cycle{Outcome: poll.OutcomeNothingNew})

	assert.Len(t, hook.AllEntries(), 1)
	removed, err := s.Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestJournalPurgeUsesRetention(t *testing.T) {
	now := time.Date(2024, 5, 31, 3, 0, 0, 0, time.UTC)
	repo := &memoryJournal{purgeRows: 12}
	s := NewJournalService(repo, 30*24*time.Hour, newTestLogger())
	s.now = func() time.Time { return now }

	removed, err := s.Purge(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(12), removed)
	assert.Equal(t, time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC), repo.cutoff)
}

func TestJournalPurgeWrapsError(t *testing.T) {
	cause := errors.New("permission denied")
	s := NewJournalService(&memoryJournal{purgeErr: cause}, time.Hour, newTestLogger())

	_, err := s.Purge(context.Background())

	assert.ErrorIs(t, err, cause)
}

func TestJournalLastCycle(t *testing.T) {
	newest := &poll.Cycle{ID: 7, Outcome: poll.OutcomeUnchanged}
	repo := &memoryJournal{saved: []*poll.Cycle{newest, {ID: 6}}}
	s := NewJournalService(repo, time.Hour, newTestLogger())

	last, err := s.LastCycle(context.Background())

	require.NoError(t, err)
	assert.Same(t, newest, last)
}

func TestJournalLastCycleEmptyOrUnconfigured(t *testing.T) {
	last, err := NewJournalService(&memoryJournal{}, time.Hour, newTestLogger()).LastCycle(context.Background())
	require.NoError(t, err)
	assert.Nil(t, last)

	last, err = NewJournalService(nil, time.Hour, newTestLogger()).LastCycle(context.Background())
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestJournalLastCycleWrapsError(t *testing.T) {
	cause := errors.New("relation \"poll_cycles\" does not exist")
	s := NewJournalService(&memoryJournal{listErr: cause}, time.Hour, newTestLogger())

	_, err := s.LastCycle(context.Background())

	assert.ErrorIs(t, err, cause)
}

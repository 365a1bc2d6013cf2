package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/domain/poll"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresJournalRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresJournalRepository(db), mock
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS poll_cycles")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS poll_cycles_started_at_idx")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaError(t *testing.T) {
	repo, mock := newMockRepo(t)
	cause := errors.New("permission denied for schema public")
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS poll_cycles")).WillReturnError(cause)

	err := repo.EnsureSchema(context.Background())

	assert.ErrorIs(t, err, cause)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCycle(t *testing.T) {
	repo, mock := newMockRepo(t)
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &poll.Cycle{
		StartedAt:    started,
		Duration:     1500 * time.Millisecond,
		Phase:        poll.PhaseFetching,
		Outcome:      poll.OutcomeErrorReported,
		Kind:         homework.KindBadStatus,
		ErrorMessage: "status API answered 500 Internal Server Error",
		CursorBefore: 100,
		CursorAfter:  100,
		Sent:         true,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO poll_cycles")).
		WithArgs(started, int64(1500), "FETCHING", "ERROR_REPORTED", "BAD_STATUS",
			"status API answered 500 Internal Server Error", int64(100), int64(100), true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	require.NoError(t, repo.SaveCycle(context.Background(), c))
	assert.Equal(t, int64(17), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCycleWithoutErrorStoresNulls(t *testing.T) {
	repo, mock := newMockRepo(t)
	c := &poll.Cycle{StartedAt: time.Unix(0, 0), Phase: poll.PhaseDeciding, Outcome: poll.OutcomeUnchanged, CursorBefore: 1, CursorAfter: 2}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO poll_cycles")).
		WithArgs(sqlmock.AnyArg(), int64(0), "DECIDING", "UNCHANGED", nil, nil, int64(1), int64(2), false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, repo.SaveCycle(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentCycles(t *testing.T) {
	repo, mock := newMockRepo(t)
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "started_at", "duration_ms", "phase", "outcome", "error_kind", "error_message", "cursor_before", "cursor_after", "sent"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM poll_cycles ORDER BY started_at DESC")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(2), started, int64(250), "NOTIFYING", "NOTIFIED", nil, nil, int64(100), int64(200), true).
			AddRow(int64(1), started.Add(-time.Minute), int64(10), "VALIDATING", "ERROR_SUPPRESSED", "SHAPE_ERROR", "not an object", int64(100), int64(100), false))

	cycles, err := repo.ListRecentCycles(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, cycles, 2)
	assert.Equal(t, poll.OutcomeNotified, cycles[0].Outcome)
	assert.Equal(t, 250*time.Millisecond, cycles[0].Duration)
	assert.Empty(t, cycles[0].Kind)
	assert.Equal(t, homework.Cursor(200), cycles[0].CursorAfter)
	assert.Equal(t, homework.KindShapeError, cycles[1].Kind)
	assert.Equal(t, "not an object", cycles[1].ErrorMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeCyclesBefore(t *testing.T) {
	repo, mock := newMockRepo(t)
	cutoff := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM poll_cycles WHERE started_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 42))

	n, err := repo.PurgeCyclesBefore(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

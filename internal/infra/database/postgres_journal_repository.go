// internal/infra/database/postgres_journal_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/domain/poll"
)

const createPollCyclesTable = `CREATE TABLE IF NOT EXISTS poll_cycles (
    id            BIGSERIAL PRIMARY KEY,
    started_at    TIMESTAMPTZ NOT NULL,
    duration_ms   BIGINT      NOT NULL,
    phase         VARCHAR(32) NOT NULL,
    outcome       VARCHAR(32) NOT NULL,
    error_kind    VARCHAR(32),
    error_message TEXT,
    cursor_before BIGINT      NOT NULL,
    cursor_after  BIGINT      NOT NULL,
    sent          BOOLEAN     NOT NULL DEFAULT FALSE
)`

const createPollCyclesIndex = `CREATE INDEX IF NOT EXISTS poll_cycles_started_at_idx ON poll_cycles (started_at)`

type PostgresJournalRepository struct {
	db *sql.DB
}

func NewPostgresJournalRepository(db *sql.DB) *PostgresJournalRepository {
	return &PostgresJournalRepository{db: db}
}

func (r *PostgresJournalRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createPollCyclesTable, createPollCyclesIndex} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error creating poll journal schema: %w", err)
		}
	}
	return nil
}

func (r *PostgresJournalRepository) SaveCycle(ctx context.Context, c *poll.Cycle) error {
	query := `INSERT INTO poll_cycles (started_at, duration_ms, phase, outcome, error_kind, error_message, cursor_before, cursor_after, sent)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		c.StartedAt, c.Duration.Milliseconds(), string(c.Phase), string(c.Outcome),
		nullString(string(c.Kind)), nullString(c.ErrorMessage),
		int64(c.CursorBefore), int64(c.CursorAfter), c.Sent,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("error saving poll cycle: %w", err)
	}
	return nil
}

func (r *PostgresJournalRepository) ListRecentCycles(ctx context.Context, limit int) ([]*poll.Cycle, error) {
	query := `SELECT id, started_at, duration_ms, phase, outcome, error_kind, error_message, cursor_before, cursor_after, sent
               FROM poll_cycles ORDER BY started_at DESC, id DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing poll cycles: %w", err)
	}
	defer rows.Close()

	cycles := make([]*poll.Cycle, 0, limit)
	for rows.Next() {
		var (
			c          poll.Cycle
			durationMs int64
			phase      string
			outcome    string
			kind       sql.NullString
			message    sql.NullString
			before     int64
			after      int64
		)
		if err := rows.Scan(&c.ID, &c.StartedAt, &durationMs, &phase, &outcome, &kind, &message, &before, &after, &c.Sent); err != nil {
			return nil, fmt.Errorf("error scanning poll cycle row: %w", err)
		}
		c.Duration = time.Duration(durationMs) * time.Millisecond
		c.Phase = poll.Phase(phase)
		c.Outcome = poll.Outcome(outcome)
		c.Kind = homework.Kind(kind.String)
		c.ErrorMessage = message.String
		c.CursorBefore = homework.Cursor(before)
		c.CursorAfter = homework.Cursor(after)
		cycles = append(cycles, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating poll cycle rows: %w", err)
	}
	return cycles, nil
}

func (r *PostgresJournalRepository) PurgeCyclesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM poll_cycles WHERE started_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error purging poll cycles: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading purged row count: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ poll.Repository = (*PostgresJournalRepository)(nil)

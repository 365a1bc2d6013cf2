// internal/domain/poll/repository.go
package poll

import (
	"context"
	"time"
)

// Repository persists the cycle journal.
type Repository interface {
	EnsureSchema(ctx context.Context) error
	SaveCycle(ctx context.Context, cycle *Cycle) error
	ListRecentCycles(ctx context.Context, limit int) ([]*Cycle, error)
	// PurgeCyclesBefore deletes journal rows started before the cutoff and returns how many were removed.
	PurgeCyclesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

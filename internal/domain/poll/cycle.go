// internal/domain/poll/cycle.go
package poll

import (
	"time"

	"homework_status_bot/internal/domain/homework"
)

// Cycle is the diagnostic record of one poll iteration.
// Corresponds to the 'poll_cycles' journal table.
type Cycle struct {
	ID           int64
	StartedAt    time.Time
	Duration     time.Duration
	Phase        Phase         // last phase reached
	Outcome      Outcome       // how the cycle ended
	Kind         homework.Kind // empty unless the cycle hit an error
	ErrorMessage string
	CursorBefore homework.Cursor
	CursorAfter  homework.Cursor
	Sent         bool // a notification left the process during this cycle
}

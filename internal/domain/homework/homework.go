package homework

import "context"

// Cursor is the from_date marker sent to the status API, in unix seconds.
type Cursor int64

// Record is one submission as decoded from the API payload.
type Record = map[string]any

// Payload field names.
const (
	FieldHomeworks   = "homeworks"
	FieldCurrentDate = "current_date"
	FieldName        = "homework_name"
	FieldNameShort   = "name"
	FieldStatus      = "status"
)

// Fetcher retrieves the decoded status payload for submissions updated at or after from.
type Fetcher interface {
	Fetch(ctx context.Context, from Cursor) (any, error)
}

// Notifier delivers a text to the single configured destination.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

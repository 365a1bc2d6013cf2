package homework

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the poll loop can observe.
type Kind string

const (
	KindUnknown            Kind = "UNKNOWN"
	KindTransportFailure   Kind = "TRANSPORT_FAILURE"
	KindBadStatus          Kind = "BAD_STATUS"
	KindDecodeFailure      Kind = "DECODE_FAILURE"
	KindShapeError         Kind = "SHAPE_ERROR"
	KindEmptyAnswer        Kind = "EMPTY_ANSWER"
	KindUnknownVerdict     Kind = "UNKNOWN_VERDICT"
	KindSendFailure        Kind = "SEND_FAILURE"
	KindMissingCredentials Kind = "MISSING_CREDENTIALS"
)

// Error is the single error type produced by the polling core and its collaborators.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Errorf builds an Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind. A nil err yields nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
// Errors that were never tagged are KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	return KindUnknown
}

// IsRecoverable reports whether the poll loop absorbs errors of this kind within a cycle.
func (k Kind) IsRecoverable() bool {
	return k != KindMissingCredentials
}

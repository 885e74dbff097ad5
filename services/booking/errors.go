package booking

import (
	"fmt"

	"knead/models"
)

// ValidationError reports malformed input to Create. Recoverable; nothing is
// persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ReferenceError reports a missing or unknown reference (masseur, massage
// type, or booking). Nothing is persisted or changed.
type ReferenceError struct {
	Kind string
	ID   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown %s reference: %s", e.Kind, e.ID)
}

// InvalidTransitionError reports a disallowed status edge or an unauthorized
// actor. The row is left unchanged and the request must not be retried.
type InvalidTransitionError struct {
	BookingID string
	From      models.BookingStatus
	To        models.BookingStatus
	Reason    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s for booking %s: %s", e.From, e.To, e.BookingID, e.Reason)
}

// TransientIOError wraps a store or bus failure. The controller does not
// retry; recovery relies on the callers' poll timers or a manual refresh.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("transient I/O failure during %s: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error {
	return e.Err
}

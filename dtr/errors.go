/*
errors.go - Centralized error taxonomy for the attendance engine

PURPOSE:
  All error types in one place. Callers branch with errors.Is / errors.As;
  the HTTP layer maps them to statuses without inspecting messages.

ERROR CATEGORIES:
  ParseError        - input time matches no accepted format (recoverable)
  SequencingError   - proposed record violates slot ordering; blocking for
                      AM_OUT / PM_IN, advisory for PM_OUT and manual entries
  PreconditionError - a transition's slot-state guard failed; nothing appended
  StoreError        - the event log failed; transition aborted, no partial state
  DeliveryError     - a reminder could not be sent; logged, never retried

USAGE:
  if errors.Is(err, dtr.ErrPrecondition) { ... }
  var seq *dtr.SequencingError
  if errors.As(err, &seq) { warn(seq.Message) }
*/
package dtr

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrParse is the root of all time/label parse failures.
	ErrParse = errors.New("unrecognized format")

	// ErrSequence is the root of slot-ordering violations.
	ErrSequence = errors.New("time sequence violation")

	// ErrPrecondition is the root of transition guard failures.
	ErrPrecondition = errors.New("transition precondition failed")

	// ErrStore is the root of event-log append/query failures.
	ErrStore = errors.New("event store failure")

	// ErrDelivery is the root of reminder delivery failures.
	ErrDelivery = errors.New("notification delivery failed")

	// ErrIncompleteRecord is returned by the hours calculator when a slot
	// is missing, unparseable, or a span is negative.
	ErrIncompleteRecord = errors.New("incomplete daily record")

	// ErrUnknownUser is returned when a user is not in the roster.
	ErrUnknownUser = errors.New("user not registered")

	// ErrNotAdmin is returned when a privileged operation is attempted by
	// a non-admin.
	ErrNotAdmin = errors.New("admin privileges required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ParseError reports an input that matched none of the accepted formats.
type ParseError struct {
	Input string
	What  string // "wall-clock time", "slot", "event kind"
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q", e.What, e.Input)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// SequencingError reports which slot pair is out of order. Message is the
// user-facing sentence ("AM OUT must be after AM IN.").
type SequencingError struct {
	Earlier EventKind
	Later   EventKind
	Message string
}

func (e *SequencingError) Error() string { return e.Message }

func (e *SequencingError) Unwrap() error { return ErrSequence }

// PreconditionError reports a refused transition. Reason is user-facing.
type PreconditionError struct {
	Kind   EventKind // transition that was refused; empty for half-day shapes
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

// StoreError wraps an adapter failure. The underlying error stays internal;
// user-facing rendering should advise "try again", not leak store details.
type StoreError struct {
	Op  string // "append", "query"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("event store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return ErrStore }

// DeliveryError wraps a failed reminder notification.
type DeliveryError struct {
	User UserID
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.User, e.Err)
}

func (e *DeliveryError) Unwrap() error { return ErrDelivery }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is the caller's to fix (bad input
// or state), as opposed to a store fault worth retrying.
func IsClientError(err error) bool {
	return errors.Is(err, ErrParse) ||
		errors.Is(err, ErrSequence) ||
		errors.Is(err, ErrPrecondition) ||
		errors.Is(err, ErrNotAdmin) ||
		errors.Is(err, ErrUnknownUser)
}

/*
store.go - Collaborator contracts: event log, roster, notification sink

PURPOSE:
  Defines the interfaces the engine depends on. The durable event store
  (originally a spreadsheet) is abstracted to two operations: append and
  query-by-user-and-date. Ordering is log order - the order appends
  completed - never a field inside the event.

APPEND-ONLY CONTRACT:
  - No Update, no Delete. Corrections are new events appended later.
  - AppendBatch is all-or-nothing: the two synthetic half-day events are
    written together or not at all.
  - A query must observe a prefix of completed appends for the same user;
    no dirty reads of a partial batch.

IMPLEMENTATIONS:
  - dtr/store: in-memory, for tests and dev
  - store/sqlite: production SQLite (WAL, migrate-on-open)

SEE ALSO:
  - engine.go: the only writer
  - reminder.go: read-only consumer plus Notifier
*/
package dtr

import (
	"context"
	"time"
)

// =============================================================================
// EVENT LOG - Append-only ordered store of clock events
// =============================================================================

// EventLog is the adapter over the durable event store.
// IMPORTANT: append-only. No update, no delete. Ever.
type EventLog interface {
	// Append persists one event. This and AppendBatch are the only writes.
	Append(ctx context.Context, ev ClockEvent) error

	// AppendBatch persists several events atomically. Either all are
	// written or none are.
	AppendBatch(ctx context.Context, evs []ClockEvent) error

	// QueryByUserAndDate returns the user's events for the given calendar
	// date, in log order.
	QueryByUserAndDate(ctx context.Context, user UserID, date time.Time) ([]ClockEvent, error)
}

// =============================================================================
// ROSTER - Read-only user directory
// =============================================================================

// Roster supplies user identity. The engine only reads it.
type Roster interface {
	// ListUsers returns all registered users.
	ListUsers(ctx context.Context) ([]UserProfile, error)

	// Lookup returns the profile for id, or nil if not registered.
	Lookup(ctx context.Context, id UserID) (*UserProfile, error)

	// IsAdmin reports whether id may run privileged operations.
	IsAdmin(ctx context.Context, id UserID) (bool, error)
}

// RosterStore extends Roster with the management operations the admin
// surface needs. The engine itself never writes the roster.
type RosterStore interface {
	Roster

	// AddUser registers a user. Fails if the ID is taken.
	AddUser(ctx context.Context, p UserProfile) error

	// Rename changes a user's display name.
	Rename(ctx context.Context, id UserID, name string) error

	// Remove deregisters a user. The event log keeps their history.
	Remove(ctx context.Context, id UserID) error
}

// =============================================================================
// NOTIFICATION SINK
// =============================================================================

// Notifier delivers reminder messages. Failures are logged by the caller
// and never retried.
type Notifier interface {
	Notify(ctx context.Context, user UserProfile, message string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, user UserProfile, message string) error

func (f NotifierFunc) Notify(ctx context.Context, user UserProfile, message string) error {
	return f(ctx, user, message)
}

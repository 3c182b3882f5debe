/*
Package dtr implements the daily-time-record attendance engine.

PURPOSE:
  Turns an append-only log of clock events (AM in/out, PM in/out) into a
  consistent per-user, per-day record, validates the ordering between the
  four slots, computes worked hours against a required-hours target, and
  drives the end-of-day reminder pass.

KEY CONCEPTS IN THIS FILE (types.go):
  - ClockEvent: one immutable fact in the event log
  - EventKind: closed enumeration of the four clock transitions
  - DailyRecord: derived per-day view, rebuilt from events on every read
  - UserProfile: roster entry, owned by the roster collaborator

DESIGN PRINCIPLES:
  1. Immutability: events are never updated or deleted; a correction is a
     new event appended later, and the last event per slot wins on replay
  2. Derivation: DailyRecord is never stored - it is a pure fold over the
     ordered events for (user, date)
  3. Type Safety: event kinds are a closed enum decoded by exact match,
     never by substring

SEE ALSO:
  - record.go: the fold producing DailyRecord
  - engine.go: the transition state machine
  - store.go: EventLog / Roster / Notifier collaborator contracts
*/
package dtr

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// UserID identifies a user across the event log and the roster. The chat
// front end supplies it; the engine never mints one.
type UserID string

// UserProfile is a roster entry. Lifecycle belongs to the roster
// collaborator, not the engine.
type UserProfile struct {
	ID          UserID
	DisplayName string
}

// =============================================================================
// EVENT KIND - Closed enumeration of the four clock transitions
// =============================================================================

// EventKind is the label stored with each event. The values are the exact
// strings written to the event store; decoding is by exact match only.
type EventKind string

const (
	AMIn  EventKind = "AM - Time In"
	AMOut EventKind = "AM - Time Out"
	PMIn  EventKind = "PM - Time In"
	PMOut EventKind = "PM - Time Out"
)

// NotAvailable is the sentinel slot value marking a half explicitly absent
// (half-day). It never parses as a time and skips sequence comparison.
const NotAvailable = "N/A"

// Kinds lists all event kinds in slot order.
func Kinds() []EventKind {
	return []EventKind{AMIn, AMOut, PMIn, PMOut}
}

// Valid reports whether k is one of the four known kinds.
func (k EventKind) Valid() bool {
	switch k {
	case AMIn, AMOut, PMIn, PMOut:
		return true
	}
	return false
}

// ParseEventKind decodes a stored label. Exact equality only.
func ParseEventKind(label string) (EventKind, error) {
	k := EventKind(label)
	if !k.Valid() {
		return "", &ParseError{Input: label, What: "event kind"}
	}
	return k, nil
}

// slot short names used by commands and the HTTP surface (am_in, pm_out, ...)
var slotNames = map[string]EventKind{
	"am_in":  AMIn,
	"am_out": AMOut,
	"pm_in":  PMIn,
	"pm_out": PMOut,
}

// ParseSlot decodes a short slot name such as "am_in".
func ParseSlot(s string) (EventKind, error) {
	if k, ok := slotNames[s]; ok {
		return k, nil
	}
	return "", &ParseError{Input: s, What: "slot"}
}

// SlotName returns the short name for k ("am_in", "pm_out", ...).
func (k EventKind) SlotName() string {
	for name, kind := range slotNames {
		if kind == k {
			return name
		}
	}
	return ""
}

// =============================================================================
// CLOCK EVENT - One immutable fact
// =============================================================================

// ClockEvent is a single appended fact. Once written it is never mutated;
// corrections are later events for the same slot.
type ClockEvent struct {
	ID        string
	User      UserID
	LoggedAt  time.Time
	Kind      EventKind
	InputTime string // store-form wall clock ("8:30:00 AM") or NotAvailable
}

// NewClockEvent builds an event with a fresh ID.
func NewClockEvent(user UserID, kind EventKind, inputTime string, loggedAt time.Time) ClockEvent {
	return ClockEvent{
		ID:        uuid.NewString(),
		User:      user,
		LoggedAt:  loggedAt,
		Kind:      kind,
		InputTime: inputTime,
	}
}

// =============================================================================
// DAILY RECORD - Derived per-day view
// =============================================================================

// DailyRecord is the reconstructed state of one user's day. Slot values are
// display-form times ("8:30 AM"), NotAvailable, or "" when unset. It is
// rebuilt from the log on every read and never persisted.
type DailyRecord struct {
	User  UserID
	Date  time.Time // midnight in the engine's zone
	AMIn  string
	AMOut string
	PMIn  string
	PMOut string
}

// Slot returns the value for the given kind.
func (r DailyRecord) Slot(k EventKind) string {
	switch k {
	case AMIn:
		return r.AMIn
	case AMOut:
		return r.AMOut
	case PMIn:
		return r.PMIn
	case PMOut:
		return r.PMOut
	}
	return ""
}

// SetSlot overwrites the value for the given kind.
func (r *DailyRecord) SetSlot(k EventKind, v string) {
	switch k {
	case AMIn:
		r.AMIn = v
	case AMOut:
		r.AMOut = v
	case PMIn:
		r.PMIn = v
	case PMOut:
		r.PMOut = v
	}
}

// Empty reports whether no slot has been set today.
func (r DailyRecord) Empty() bool {
	return r.AMIn == "" && r.AMOut == "" && r.PMIn == "" && r.PMOut == ""
}

// Complete reports whether all four slots hold a value (times or sentinels).
func (r DailyRecord) Complete() bool {
	return r.AMIn != "" && r.AMOut != "" && r.PMIn != "" && r.PMOut != ""
}

// MorningHalfDay reports whether the PM half is marked absent.
func (r DailyRecord) MorningHalfDay() bool {
	return r.PMIn == NotAvailable || r.PMOut == NotAvailable
}

// AfternoonHalfDay reports whether the AM half is marked absent.
func (r DailyRecord) AfternoonHalfDay() bool {
	return r.AMIn == NotAvailable || r.AMOut == NotAvailable
}

// IsHalfDay reports whether either half is marked absent.
func (r DailyRecord) IsHalfDay() bool {
	return r.MorningHalfDay() || r.AfternoonHalfDay()
}

/*
engine.go - Clock-event state machine

PURPOSE:
  One entry point per transition (AmIn, AmOut, PmIn, PmOut, HalfDay,
  ManualEntry) plus the read-only Status/Record views. Every transition
  follows the same template:

    reconstruct -> check preconditions -> propose next record ->
    validate -> append -> reconstruct -> summarize

  The proposed record is a value copy of the current one with the new slot
  set; validation runs on the proposal before anything is written.

VALIDATION POLICY:
  - AM_OUT and PM_IN: a sequencing violation blocks the append. An
    obviously backwards out-before-in record is cheaper to refuse now
    than to correct later.
  - PM_OUT and manual entries: advisory. The append proceeds and the
    violation message rides along as a warning; a later correction is
    always possible.

CONCURRENCY:
  A per-user mutex serializes the reconstruct-validate-append sequence so
  two near-simultaneous calls cannot both pass the same precondition and
  double-append. Different users never contend.

SEE ALSO:
  - validate.go: the ordering rules
  - hours.go: the totals attached to PM_OUT and Status
  - reminder.go: the background consumer of the same reads
*/
package dtr

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Rules holds the tunable attendance policy.
type Rules struct {
	MorningPersonCutoff Cutoff
	LateCutoff          Cutoff
	RequiredHours       decimal.Decimal
}

// DefaultRules matches the original deployment: early before 7:44, late at
// or after 10:00, 8 required hours.
func DefaultRules() Rules {
	return Rules{
		MorningPersonCutoff: Cutoff{Hour: 7, Minute: 44},
		LateCutoff:          Cutoff{Hour: 10, Minute: 0},
		RequiredHours:       DefaultRequiredHours,
	}
}

// Half names which half of the day a half-day request covers.
type Half string

const (
	MorningHalf   Half = "morning"
	AfternoonHalf Half = "afternoon"
)

// Result is what a transition hands back to the front end.
type Result struct {
	Record DailyRecord

	// Classification is set by AmIn only, to pick a response flavor.
	Classification Classification

	// Hours is set when a total is computable (PmOut, Status, half-day).
	Hours *HoursSummary

	// Warning carries an advisory sequencing message; the append went
	// through anyway.
	Warning string
}

// Engine is the transition state machine. All writes to the event log go
// through it.
type Engine struct {
	log    EventLog
	roster Roster
	clock  *Clock
	rules  Rules

	mu    sync.Mutex
	locks map[UserID]*sync.Mutex
}

// NewEngine wires the engine. Stores are injected; the engine owns no
// ambient state.
func NewEngine(log EventLog, roster Roster, clock *Clock, rules Rules) *Engine {
	return &Engine{
		log:    log,
		roster: roster,
		clock:  clock,
		rules:  rules,
		locks:  make(map[UserID]*sync.Mutex),
	}
}

// Clock exposes the engine's clock (the reminder pass shares it).
func (e *Engine) Clock() *Clock { return e.clock }

// Rules exposes the attendance policy.
func (e *Engine) Rules() Rules { return e.rules }

// userLock returns the mutex serializing one user's transitions.
func (e *Engine) userLock(user UserID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.locks[user]
	if !ok {
		m = &sync.Mutex{}
		e.locks[user] = m
	}
	return m
}

// resolve checks the roster and returns the profile.
func (e *Engine) resolve(ctx context.Context, user UserID) (*UserProfile, error) {
	p, err := e.roster.Lookup(ctx, user)
	if err != nil {
		return nil, &StoreError{Op: "roster lookup", Err: err}
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, user)
	}
	return p, nil
}

// requireAdmin checks the caller's privileges.
func (e *Engine) requireAdmin(ctx context.Context, admin UserID) error {
	ok, err := e.roster.IsAdmin(ctx, admin)
	if err != nil {
		return &StoreError{Op: "roster lookup", Err: err}
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotAdmin, admin)
	}
	return nil
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// AmIn clocks in for the morning and classifies the moment.
func (e *Engine) AmIn(ctx context.Context, user UserID) (*Result, error) {
	if _, err := e.resolve(ctx, user); err != nil {
		return nil, err
	}
	lock := e.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	rec, err := e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}
	if rec.AMIn != "" {
		return nil, &PreconditionError{Kind: AMIn, Reason: "You already clocked AM IN today."}
	}

	now := e.clock.Now()
	w := WallClockOf(now)
	ev := NewClockEvent(user, AMIn, w.StoreString(), now)
	if err := e.log.Append(ctx, ev); err != nil {
		return nil, &StoreError{Op: "append", Err: err}
	}

	rec, err = e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Result{
		Record:         rec,
		Classification: Classify(w, e.rules.MorningPersonCutoff, e.rules.LateCutoff),
	}, nil
}

// AmOut clocks out for the lunch break. Sequencing violations block.
func (e *Engine) AmOut(ctx context.Context, user UserID) (*Result, error) {
	return e.blockingTransition(ctx, user, AMOut, func(rec DailyRecord) error {
		if rec.AMIn == "" {
			return &PreconditionError{Kind: AMOut, Reason: "You must clock AM IN first."}
		}
		if rec.AMOut != "" {
			return &PreconditionError{Kind: AMOut, Reason: "You already clocked AM OUT today."}
		}
		if rec.PMOut != "" {
			return &PreconditionError{Kind: AMOut, Reason: "Your work day is already complete. You cannot modify times after PM OUT."}
		}
		return nil
	})
}

// PmIn clocks in after the lunch break. Sequencing violations block.
func (e *Engine) PmIn(ctx context.Context, user UserID) (*Result, error) {
	return e.blockingTransition(ctx, user, PMIn, func(rec DailyRecord) error {
		if rec.AMOut == "" {
			return &PreconditionError{Kind: PMIn, Reason: "You must clock AM OUT first."}
		}
		if rec.PMIn != "" {
			return &PreconditionError{Kind: PMIn, Reason: "You already clocked PM IN today."}
		}
		if rec.PMOut != "" {
			return &PreconditionError{Kind: PMIn, Reason: "Your work day is already complete. You cannot modify times after PM OUT."}
		}
		return nil
	})
}

// blockingTransition is the shared AM_OUT / PM_IN template: guard, propose,
// validate (blocking), append, replay.
func (e *Engine) blockingTransition(ctx context.Context, user UserID, kind EventKind, guard func(DailyRecord) error) (*Result, error) {
	if _, err := e.resolve(ctx, user); err != nil {
		return nil, err
	}
	lock := e.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	rec, err := e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := guard(rec); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	w := WallClockOf(now)

	proposed := rec
	proposed.SetSlot(kind, w.StoreString())
	if err := ValidateSequence(proposed); err != nil {
		return nil, err
	}

	ev := NewClockEvent(user, kind, w.StoreString(), now)
	if err := e.log.Append(ctx, ev); err != nil {
		return nil, &StoreError{Op: "append", Err: err}
	}

	rec, err = e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Result{Record: rec}, nil
}

// PmOut clocks out for the day. Sequencing violations are advisory here:
// the append proceeds and the message rides along as a warning.
func (e *Engine) PmOut(ctx context.Context, user UserID) (*Result, error) {
	if _, err := e.resolve(ctx, user); err != nil {
		return nil, err
	}
	lock := e.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	rec, err := e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}
	if rec.PMIn == "" {
		return nil, &PreconditionError{Kind: PMOut, Reason: "You must clock PM IN first."}
	}
	if rec.PMOut != "" {
		return nil, &PreconditionError{Kind: PMOut, Reason: "Your work day is already complete. You cannot clock out again."}
	}

	now := e.clock.Now()
	w := WallClockOf(now)

	var warning string
	proposed := rec
	proposed.SetSlot(PMOut, w.StoreString())
	if err := ValidateSequence(proposed); err != nil {
		warning = err.Error()
	}

	ev := NewClockEvent(user, PMOut, w.StoreString(), now)
	if err := e.log.Append(ctx, ev); err != nil {
		return nil, &StoreError{Op: "append", Err: err}
	}

	rec, err = e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}

	res := &Result{Record: rec, Warning: warning}
	if worked, err := HoursWorked(rec); err == nil {
		s := Summarize(worked, e.rules.RequiredHours)
		res.Hours = &s
	}
	// An unrecognized shape (e.g. a half day) gets no duration; the front
	// end reports the day as complete without one.
	return res, nil
}

// HalfDay marks one half of the day explicitly absent by appending the two
// "N/A" sentinel events as one atomic batch.
func (e *Engine) HalfDay(ctx context.Context, user UserID, half Half) (*Result, error) {
	if _, err := e.resolve(ctx, user); err != nil {
		return nil, err
	}
	if half != MorningHalf && half != AfternoonHalf {
		return nil, &PreconditionError{Reason: "Invalid option. Use half_day morning or half_day afternoon."}
	}
	lock := e.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	rec, err := e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()

	if half == MorningHalf {
		if rec.AMIn == "" || rec.AMOut == "" {
			return nil, &PreconditionError{Reason: "You must clock AM IN and AM OUT first."}
		}
		if rec.PMIn != "" || rec.PMOut != "" {
			return nil, &PreconditionError{Reason: "PM entries already exist. Cannot mark as morning half-day."}
		}
		batch := []ClockEvent{
			NewClockEvent(user, PMIn, NotAvailable, now),
			NewClockEvent(user, PMOut, NotAvailable, now),
		}
		if err := e.log.AppendBatch(ctx, batch); err != nil {
			return nil, &StoreError{Op: "append", Err: err}
		}

		rec, err = e.reconstructToday(ctx, user)
		if err != nil {
			return nil, err
		}
		res := &Result{Record: rec}
		if morning, err := MorningHours(rec); err == nil {
			s := SummarizeHalfDay(morning)
			res.Hours = &s
		}
		return res, nil
	}

	// Afternoon half-day is declared before any clocking happens.
	if rec.AMIn != "" || rec.AMOut != "" {
		return nil, &PreconditionError{Reason: "AM entries already exist. Cannot mark as afternoon half-day."}
	}
	if rec.PMIn != "" || rec.PMOut != "" {
		return nil, &PreconditionError{Reason: "PM entries already exist."}
	}
	batch := []ClockEvent{
		NewClockEvent(user, AMIn, NotAvailable, now),
		NewClockEvent(user, AMOut, NotAvailable, now),
	}
	if err := e.log.AppendBatch(ctx, batch); err != nil {
		return nil, &StoreError{Op: "append", Err: err}
	}

	rec, err = e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Result{Record: rec}, nil
}

// ManualEntry is the privileged correction path: the target slot may
// already hold a value, and a new event for it simply supersedes the old
// one on replay. Validation is advisory only.
func (e *Engine) ManualEntry(ctx context.Context, admin, user UserID, kind EventKind, input string) (*Result, error) {
	if err := e.requireAdmin(ctx, admin); err != nil {
		return nil, err
	}
	if _, err := e.resolve(ctx, user); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, &ParseError{Input: string(kind), What: "event kind"}
	}
	w, err := ParseWallClock(input)
	if err != nil {
		return nil, err
	}

	lock := e.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	rec, err := e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}

	var warning string
	proposed := rec
	proposed.SetSlot(kind, w.StoreString())
	if err := ValidateSequence(proposed); err != nil {
		warning = err.Error()
	}

	ev := NewClockEvent(user, kind, w.StoreString(), e.clock.Now())
	if err := e.log.Append(ctx, ev); err != nil {
		return nil, &StoreError{Op: "append", Err: err}
	}

	rec, err = e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Result{Record: rec, Warning: warning}, nil
}

// =============================================================================
// READ-ONLY VIEWS
// =============================================================================

// Status reconstructs the caller's day and attaches whatever totals are
// computable.
func (e *Engine) Status(ctx context.Context, user UserID) (*Result, error) {
	if _, err := e.resolve(ctx, user); err != nil {
		return nil, err
	}
	rec, err := e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}
	return e.summarize(rec), nil
}

// Record is the privileged view of any user's day.
func (e *Engine) Record(ctx context.Context, admin, user UserID) (*Result, error) {
	if err := e.requireAdmin(ctx, admin); err != nil {
		return nil, err
	}
	if _, err := e.resolve(ctx, user); err != nil {
		return nil, err
	}
	rec, err := e.reconstructToday(ctx, user)
	if err != nil {
		return nil, err
	}
	return e.summarize(rec), nil
}

// summarize attaches hours to a complete record: a full-day total with
// requirement evaluation, or a single-half total for half-day shapes.
func (e *Engine) summarize(rec DailyRecord) *Result {
	res := &Result{Record: rec}
	if !rec.Complete() {
		return res
	}
	switch {
	case rec.MorningHalfDay():
		if morning, err := MorningHours(rec); err == nil {
			s := SummarizeHalfDay(morning)
			res.Hours = &s
		}
	case rec.AfternoonHalfDay():
		if afternoon, err := AfternoonHours(rec); err == nil {
			s := SummarizeHalfDay(afternoon)
			res.Hours = &s
		}
	default:
		if worked, err := HoursWorked(rec); err == nil {
			s := Summarize(worked, e.rules.RequiredHours)
			res.Hours = &s
		}
	}
	return res
}

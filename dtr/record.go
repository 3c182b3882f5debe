/*
record.go - Daily record reconstruction (the replay fold)

PURPOSE:
  Folds a user's events for one date into the four-slot DailyRecord.
  Reconstruction is pure: same events in, same record out. The last event
  per slot wins, which is what makes admin corrections idempotent - a
  corrected AM_OUT simply supersedes the prior one on the next replay,
  with no mutation of history.

DEGRADATION:
  Stored input times are re-rendered to display form. If a stored value
  does not parse, it passes through unchanged rather than failing the
  whole record; the sentinel "N/A" passes through as-is.
*/
package dtr

import (
	"context"
	"time"
)

// Reconstruct folds events into a DailyRecord. Events must be in log
// order; events with an unknown kind are skipped.
func Reconstruct(user UserID, date time.Time, events []ClockEvent) DailyRecord {
	rec := DailyRecord{User: user, Date: date}
	for _, ev := range events {
		if !ev.Kind.Valid() {
			continue
		}
		rec.SetSlot(ev.Kind, renderInputTime(ev.InputTime))
	}
	return rec
}

// renderInputTime converts a stored time to display form. Sentinels and
// unparseable values pass through raw.
func renderInputTime(s string) string {
	if s == "" || s == NotAvailable {
		return s
	}
	w, err := ParseWallClock(s)
	if err != nil {
		return s
	}
	return w.DisplayString()
}

// reconstructToday loads today's events for user and replays them.
func (e *Engine) reconstructToday(ctx context.Context, user UserID) (DailyRecord, error) {
	date := e.clock.Today()
	events, err := e.log.QueryByUserAndDate(ctx, user, date)
	if err != nil {
		return DailyRecord{}, &StoreError{Op: "query", Err: err}
	}
	return Reconstruct(user, date, events), nil
}

package dtr_test

import (
	"testing"
	"time"

	"github.com/hawks/dtr-engine/dtr"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func event(user dtr.UserID, kind dtr.EventKind, input string) dtr.ClockEvent {
	return dtr.NewClockEvent(user, kind, input, time.Now())
}

// =============================================================================
// RECONSTRUCTION (pure fold)
// =============================================================================

func TestReconstruct_FoldIsIdempotent(t *testing.T) {
	// GIVEN: a fixed event list
	// WHEN: reconstructing twice
	// THEN: both records are identical (reconstruction is a pure fold)

	events := []dtr.ClockEvent{
		event("u1", dtr.AMIn, "8:00:00 AM"),
		event("u1", dtr.AMOut, "12:00:00 PM"),
	}
	d := date(2026, time.March, 5)

	first := dtr.Reconstruct("u1", d, events)
	second := dtr.Reconstruct("u1", d, events)
	if first != second {
		t.Fatalf("reconstruction not deterministic: %+v vs %+v", first, second)
	}
	if first.AMIn != "8:00 AM" || first.AMOut != "12:00 PM" {
		t.Errorf("unexpected slots: %+v", first)
	}
}

func TestReconstruct_LastWriteWins(t *testing.T) {
	// GIVEN: two AM_OUT events in log order (the second is a correction)
	// WHEN: reconstructing
	// THEN: the later event's value shows, regardless of the earlier one

	events := []dtr.ClockEvent{
		event("u1", dtr.AMOut, "12:00:00 PM"),
		event("u1", dtr.AMOut, "11:30:00 AM"),
	}
	rec := dtr.Reconstruct("u1", date(2026, time.March, 5), events)
	if rec.AMOut != "11:30 AM" {
		t.Errorf("AMOut = %q, want the corrected 11:30 AM", rec.AMOut)
	}
}

func TestReconstruct_RendersDisplayForm(t *testing.T) {
	rec := dtr.Reconstruct("u1", date(2026, time.March, 5), []dtr.ClockEvent{
		event("u1", dtr.AMIn, "8:05:00 AM"), // store form in
	})
	if rec.AMIn != "8:05 AM" { // display form out
		t.Errorf("AMIn = %q, want display form 8:05 AM", rec.AMIn)
	}
}

func TestReconstruct_UnparseableInputPassesThrough(t *testing.T) {
	// A garbled stored value must not fail the whole record.
	rec := dtr.Reconstruct("u1", date(2026, time.March, 5), []dtr.ClockEvent{
		event("u1", dtr.AMIn, "garbled"),
		event("u1", dtr.AMOut, "12:00:00 PM"),
	})
	if rec.AMIn != "garbled" {
		t.Errorf("AMIn = %q, want raw passthrough", rec.AMIn)
	}
	if rec.AMOut != "12:00 PM" {
		t.Errorf("AMOut = %q, want 12:00 PM", rec.AMOut)
	}
}

func TestReconstruct_SentinelPassesThrough(t *testing.T) {
	rec := dtr.Reconstruct("u1", date(2026, time.March, 5), []dtr.ClockEvent{
		event("u1", dtr.PMIn, dtr.NotAvailable),
		event("u1", dtr.PMOut, dtr.NotAvailable),
	})
	if rec.PMIn != dtr.NotAvailable || rec.PMOut != dtr.NotAvailable {
		t.Errorf("sentinel not preserved: %+v", rec)
	}
	if !rec.MorningHalfDay() {
		t.Error("expected MorningHalfDay")
	}
}

func TestReconstruct_SkipsUnknownKinds(t *testing.T) {
	rec := dtr.Reconstruct("u1", date(2026, time.March, 5), []dtr.ClockEvent{
		{User: "u1", Kind: dtr.EventKind("Lunch - Time In"), InputTime: "12:00:00 PM"},
	})
	if !rec.Empty() {
		t.Errorf("unknown kind should not populate slots: %+v", rec)
	}
}

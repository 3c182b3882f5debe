package dtr_test

import (
	"testing"
	"time"

	"github.com/hawks/dtr-engine/dtr"
)

// =============================================================================
// PARSING
// =============================================================================

func TestParseWallClock_AcceptedFormats(t *testing.T) {
	cases := []struct {
		input        string
		hour, minute int
	}{
		{"8:30:00 AM", 8, 30},
		{"12:00:00 PM", 12, 0},
		{"12:15:00 AM", 0, 15},
		{"5:45:10 PM", 17, 45},
		{"08:30:00", 8, 30},
		{"17:45:00", 17, 45},
		{"8:30 AM", 8, 30},
		{"5:00 PM", 17, 0},
		{"12:00 PM", 12, 0},
		{"  9:05 AM  ", 9, 5},
	}

	for _, c := range cases {
		w, err := dtr.ParseWallClock(c.input)
		if err != nil {
			t.Errorf("ParseWallClock(%q): unexpected error %v", c.input, err)
			continue
		}
		if w.Hour != c.hour || w.Minute != c.minute {
			t.Errorf("ParseWallClock(%q) = %d:%02d, want %d:%02d", c.input, w.Hour, w.Minute, c.hour, c.minute)
		}
	}
}

func TestParseWallClock_Rejects(t *testing.T) {
	for _, input := range []string{"", "   ", "N/A", "noon", "25:00:00", "8.30 AM", "8:30AMX"} {
		if _, err := dtr.ParseWallClock(input); err == nil {
			t.Errorf("ParseWallClock(%q): expected error", input)
		}
	}
}

func TestParseWallClock_RoundTrip(t *testing.T) {
	// Both textual forms must recover the same time to the minute.
	for hour := 0; hour < 24; hour++ {
		for _, minute := range []int{0, 1, 30, 59} {
			w := dtr.WallClock{Hour: hour, Minute: minute}

			fromStore, err := dtr.ParseWallClock(w.StoreString())
			if err != nil {
				t.Fatalf("store form %q did not parse: %v", w.StoreString(), err)
			}
			if fromStore.Minutes() != w.Minutes() {
				t.Fatalf("store round trip: %q -> %d:%02d", w.StoreString(), fromStore.Hour, fromStore.Minute)
			}

			fromDisplay, err := dtr.ParseWallClock(w.DisplayString())
			if err != nil {
				t.Fatalf("display form %q did not parse: %v", w.DisplayString(), err)
			}
			if fromDisplay.Minutes() != w.Minutes() {
				t.Fatalf("display round trip: %q -> %d:%02d", w.DisplayString(), fromDisplay.Hour, fromDisplay.Minute)
			}
		}
	}
}

func TestWallClock_Formatting(t *testing.T) {
	cases := []struct {
		w       dtr.WallClock
		store   string
		display string
	}{
		{dtr.WallClock{Hour: 8, Minute: 30, Second: 42}, "8:30:00 AM", "8:30 AM"},
		{dtr.WallClock{Hour: 0, Minute: 5}, "12:05:00 AM", "12:05 AM"},
		{dtr.WallClock{Hour: 12, Minute: 0}, "12:00:00 PM", "12:00 PM"},
		{dtr.WallClock{Hour: 17, Minute: 45}, "5:45:00 PM", "5:45 PM"},
	}
	for _, c := range cases {
		if got := c.w.StoreString(); got != c.store {
			t.Errorf("StoreString(%d:%02d) = %q, want %q", c.w.Hour, c.w.Minute, got, c.store)
		}
		if got := c.w.DisplayString(); got != c.display {
			t.Errorf("DisplayString(%d:%02d) = %q, want %q", c.w.Hour, c.w.Minute, got, c.display)
		}
	}
}

// =============================================================================
// CUTOFFS AND CLASSIFICATION
// =============================================================================

func TestClassify_Windows(t *testing.T) {
	morning := dtr.Cutoff{Hour: 7, Minute: 44}
	late := dtr.Cutoff{Hour: 10, Minute: 0}

	cases := []struct {
		hour, minute int
		want         dtr.Classification
	}{
		{6, 0, dtr.MorningPerson},
		{7, 43, dtr.MorningPerson},
		{7, 44, dtr.OnTime}, // cutoff itself is not early
		{9, 59, dtr.OnTime},
		{10, 0, dtr.Late}, // cutoff instant counts as late
		{14, 30, dtr.Late},
	}
	for _, c := range cases {
		got := dtr.Classify(dtr.WallClock{Hour: c.hour, Minute: c.minute}, morning, late)
		if got != c.want {
			t.Errorf("Classify(%d:%02d) = %s, want %s", c.hour, c.minute, got, c.want)
		}
	}
}

func TestClock_TodayMidnight(t *testing.T) {
	loc := time.FixedZone("PHT", 8*3600)
	instant := time.Date(2026, time.March, 5, 14, 30, 12, 0, loc)
	clock := dtr.NewClockFunc(loc, func() time.Time { return instant })

	today := clock.Today()
	if today.Hour() != 0 || today.Minute() != 0 || today.Day() != 5 {
		t.Errorf("Today() = %v, want midnight March 5", today)
	}
}

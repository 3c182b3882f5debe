/*
clock.go - Wall-clock parsing, formatting, and time-window classification

PURPOSE:
  Everything about time-of-day strings lives here: the three accepted input
  formats, the store form (seconds always zeroed, explicit AM/PM), the
  display form (no seconds), and the cutoff comparisons that classify a
  morning clock-in as early / late / normal.

FORMATS (tried in order, first match wins):
  1. "3:04:05 PM"  - store form with seconds
  2. "15:04:05"    - 24-hour with seconds
  3. "3:04 PM"     - display form

  Formatting is deterministic and locale-free; both forms round-trip
  through ParseWallClock to the same minute.

FIXED TIMEZONE:
  The engine runs in exactly one zone (default Asia/Manila). Clock is the
  single source of "now" so tests can freeze it.

SEE ALSO:
  - record.go: re-renders stored times to display form on replay
  - validate.go / hours.go: compare and subtract WallClock values
*/
package dtr

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimezone is the zone the original deployment runs in.
const DefaultTimezone = "Asia/Manila"

// wallClockLayouts are the accepted input formats, in match order.
var wallClockLayouts = []string{
	"3:04:05 PM",
	"15:04:05",
	"3:04 PM",
}

// =============================================================================
// WALL CLOCK - A time-of-day value, independent of date
// =============================================================================

// WallClock is a time of day. It is always interpreted against some
// calendar date in the engine's zone; on its own it only supports
// minute-granularity comparison and arithmetic.
type WallClock struct {
	Hour   int // 0-23
	Minute int
	Second int
}

// ParseWallClock parses s against the accepted layouts, first match wins.
// Empty input or no match yields a *ParseError.
func ParseWallClock(s string) (WallClock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return WallClock{}, &ParseError{Input: s, What: "wall-clock time"}
	}
	for _, layout := range wallClockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return WallClock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return WallClock{}, &ParseError{Input: s, What: "wall-clock time"}
}

// WallClockOf extracts the time of day from an instant.
func WallClockOf(t time.Time) WallClock {
	return WallClock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (w WallClock) hour12() (int, string) {
	h := w.Hour % 12
	if h == 0 {
		h = 12
	}
	meridiem := "AM"
	if w.Hour >= 12 {
		meridiem = "PM"
	}
	return h, meridiem
}

// StoreString renders the store form: seconds always zeroed.
func (w WallClock) StoreString() string {
	h, m := w.hour12()
	return fmt.Sprintf("%d:%02d:00 %s", h, w.Minute, m)
}

// DisplayString renders the display form, no seconds.
func (w WallClock) DisplayString() string {
	h, m := w.hour12()
	return fmt.Sprintf("%d:%02d %s", h, w.Minute, m)
}

// Minutes returns minutes since midnight. Seconds are ignored everywhere:
// the store form zeroes them, so all arithmetic is minute-granular.
func (w WallClock) Minutes() int {
	return w.Hour*60 + w.Minute
}

// =============================================================================
// CUTOFFS AND CLASSIFICATION
// =============================================================================

// Cutoff is an hour:minute boundary on the current day.
type Cutoff struct {
	Hour   int
	Minute int
}

func (c Cutoff) minutes() int { return c.Hour*60 + c.Minute }

// AtOrAfter reports whether w falls at or past the cutoff. The cutoff
// instant itself counts: clocking in at exactly 10:00 is late.
func (w WallClock) AtOrAfter(c Cutoff) bool {
	return w.Minutes() >= c.minutes()
}

// Before reports whether w falls strictly before the cutoff.
func (w WallClock) Before(c Cutoff) bool {
	return w.Minutes() < c.minutes()
}

// Classification buckets a morning clock-in for response flavor. It is
// never persisted.
type Classification string

const (
	MorningPerson Classification = "morning_person"
	Late          Classification = "late"
	OnTime        Classification = "normal"
)

// Classify buckets w. Priority order matters: strictly before the
// morning-person cutoff wins, then at/after the late cutoff, then normal.
func Classify(w WallClock, morningPerson, late Cutoff) Classification {
	if w.Before(morningPerson) {
		return MorningPerson
	}
	if w.AtOrAfter(late) {
		return Late
	}
	return OnTime
}

// =============================================================================
// CLOCK - Single source of "now" in the fixed zone
// =============================================================================

// Clock owns the engine's timezone and now-func. Every "today" comparison
// in the engine goes through it.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a real-time clock in loc.
func NewClock(loc *time.Location) *Clock {
	return NewClockFunc(loc, time.Now)
}

// NewClockFunc returns a clock with an injected now-func, for tests.
func NewClockFunc(loc *time.Location, now func() time.Time) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: now}
}

// Now returns the current instant in the engine's zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns midnight of the current day in the engine's zone.
func (c *Clock) Today() time.Time {
	n := c.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, c.loc)
}

// Location returns the engine's zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// PrettyDate renders a date for record summaries, e.g. "January 02, 2026".
func PrettyDate(d time.Time) string {
	return d.Format("January 02, 2006")
}

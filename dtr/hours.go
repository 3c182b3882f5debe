/*
hours.go - Worked-hours arithmetic and duration formatting

PURPOSE:
  Computes (AM_OUT - AM_IN) + (PM_OUT - PM_IN) in hours, the shortfall
  against the required-hours target, and the "{h}h {m}m" display form.
  Uses decimal arithmetic throughout so 7h30m is exactly 7.5, never
  7.499999.

HALF DAYS:
  A record with one half marked "N/A" has no full-day total; HoursWorked
  returns ErrIncompleteRecord for it. The present half is computable on
  its own via MorningHours / AfternoonHours and labeled as a half-day
  total by callers; the required-hours target is not evaluated for it.
*/
package dtr

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// DefaultRequiredHours is the full-day requirement.
var DefaultRequiredHours = decimal.NewFromInt(8)

// spanMinutes returns later-earlier in minutes, or ErrIncompleteRecord if
// either side is missing, a sentinel, or unparseable.
func spanMinutes(earlier, later string) (int, error) {
	if earlier == "" || later == "" || earlier == NotAvailable || later == NotAvailable {
		return 0, ErrIncompleteRecord
	}
	from, err := ParseWallClock(earlier)
	if err != nil {
		return 0, ErrIncompleteRecord
	}
	to, err := ParseWallClock(later)
	if err != nil {
		return 0, ErrIncompleteRecord
	}
	return to.Minutes() - from.Minutes(), nil
}

func minutesToHours(min int) decimal.Decimal {
	return decimal.NewFromInt(int64(min)).Div(minutesPerHour)
}

// HoursWorked computes the full-day total. All four slots must be present
// and parseable, and both spans non-negative; otherwise
// ErrIncompleteRecord.
func HoursWorked(r DailyRecord) (decimal.Decimal, error) {
	morning, err := spanMinutes(r.AMIn, r.AMOut)
	if err != nil {
		return decimal.Zero, err
	}
	afternoon, err := spanMinutes(r.PMIn, r.PMOut)
	if err != nil {
		return decimal.Zero, err
	}
	if morning < 0 || afternoon < 0 {
		return decimal.Zero, ErrIncompleteRecord
	}
	return minutesToHours(morning + afternoon), nil
}

// MorningHours computes the AM span alone (half-day totals).
func MorningHours(r DailyRecord) (decimal.Decimal, error) {
	min, err := spanMinutes(r.AMIn, r.AMOut)
	if err != nil {
		return decimal.Zero, err
	}
	if min < 0 {
		return decimal.Zero, ErrIncompleteRecord
	}
	return minutesToHours(min), nil
}

// AfternoonHours computes the PM span alone (half-day totals).
func AfternoonHours(r DailyRecord) (decimal.Decimal, error) {
	min, err := spanMinutes(r.PMIn, r.PMOut)
	if err != nil {
		return decimal.Zero, err
	}
	if min < 0 {
		return decimal.Zero, ErrIncompleteRecord
	}
	return minutesToHours(min), nil
}

// FormatDuration renders hours as "{whole}h {minutes}m", minutes rounded.
func FormatDuration(hours decimal.Decimal) string {
	whole := hours.Floor()
	minutes := hours.Sub(whole).Mul(minutesPerHour).Round(0)
	return fmt.Sprintf("%dh %dm", whole.IntPart(), minutes.IntPart())
}

// Shortfall returns max(0, required-hours).
func Shortfall(hours, required decimal.Decimal) decimal.Decimal {
	short := required.Sub(hours)
	if short.IsNegative() {
		return decimal.Zero
	}
	return short
}

// HoursSummary is the computed outcome attached to a completed record.
type HoursSummary struct {
	Worked   decimal.Decimal
	Required decimal.Decimal

	// RequirementMet / Undertime only apply to full days.
	RequirementMet bool
	Undertime      decimal.Decimal

	// HalfDay marks a single-half total; the requirement is not evaluated.
	HalfDay bool
}

// Summarize evaluates hours against the requirement.
func Summarize(worked, required decimal.Decimal) HoursSummary {
	return HoursSummary{
		Worked:         worked,
		Required:       required,
		RequirementMet: worked.GreaterThanOrEqual(required),
		Undertime:      Shortfall(worked, required),
	}
}

// SummarizeHalfDay labels a single-half total.
func SummarizeHalfDay(worked decimal.Decimal) HoursSummary {
	return HoursSummary{Worked: worked, HalfDay: true}
}

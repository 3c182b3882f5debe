/*
validate.go - Slot ordering rules

PURPOSE:
  Checks that a daily record reads forward in time: AM OUT after AM IN,
  PM IN after AM OUT, PM OUT after PM IN. A pair is only compared when
  both sides are present and parseable; empty slots, the "N/A" sentinel,
  and raw passthrough values are skipped, so half-day records bypass
  ordering on the absent side.

POLICY:
  The validator itself only reports. Whether a violation blocks the append
  (AM_OUT, PM_IN) or is surfaced as a warning (PM_OUT, manual entries) is
  the state machine's call - see engine.go.
*/
package dtr

// sequenceRules are the ordered pairs that must be strictly increasing.
var sequenceRules = []struct {
	earlier, later EventKind
	message        string
}{
	{AMIn, AMOut, "AM OUT must be after AM IN."},
	{AMOut, PMIn, "PM IN must be after AM OUT."},
	{PMIn, PMOut, "PM OUT must be after PM IN."},
}

// ValidateSequence returns nil or a *SequencingError naming the first
// violated pair.
func ValidateSequence(r DailyRecord) error {
	times := make(map[EventKind]WallClock, 4)
	for _, k := range Kinds() {
		v := r.Slot(k)
		if v == "" || v == NotAvailable {
			continue
		}
		w, err := ParseWallClock(v)
		if err != nil {
			continue // unparseable values never participate
		}
		times[k] = w
	}

	for _, rule := range sequenceRules {
		earlier, okE := times[rule.earlier]
		later, okL := times[rule.later]
		if !okE || !okL {
			continue
		}
		if later.Minutes() <= earlier.Minutes() {
			return &SequencingError{
				Earlier: rule.earlier,
				Later:   rule.later,
				Message: rule.message,
			}
		}
	}
	return nil
}

package feed

import (
	"slices"
	"time"
)

// Upper bound, in days past the reference date, of the next-occurrence search
const SearchHorizonDays = 365

// Report whether a repeating event occurs on the calendar day of date.
//
// Single events, events without a readable anchor, and unknown frequencies
// never occur. Note the degenerate rules kept on purpose:
//   - weekly with no DaysOfWeek matches every day on or after the anchor
//   - monthly compares day-of-month literally, so an anchor on the 31st
//     skips every shorter month
func OccursOn(e Event, date time.Time) bool {
	if !e.Repeating {
		return false
	}
	anchor, ok := ParseDate(e.AnchorDate)
	if !ok {
		return false
	}
	date = Day(date)
	if date.Before(anchor) {
		return false
	}
	if len(e.DaysOfWeek) > 0 && !slices.Contains(e.DaysOfWeek, WeekdayName(date)) {
		return false
	}

	switch e.Frequency {
	case FrequencyDaily, FrequencyWeekly:
		return true
	case FrequencyBiWeekly:
		weeks := daysBetween(weekStart(anchor), weekStart(date)) / 7
		return weeks%2 == 0
	case FrequencyMonthly:
		return anchor.Day() == date.Day()
	default:
		return false
	}
}

// Find the first day on or after from (and on or after the anchor) on which
// the event occurs. The scan stops SearchHorizonDays past from; ok is false
// when nothing matched within that window or the event is not a readable
// repeating event.
func NextOccurrence(e Event, from time.Time) (time.Time, bool) {
	if !e.Repeating {
		return time.Time{}, false
	}
	anchor, ok := ParseDate(e.AnchorDate)
	if !ok {
		return time.Time{}, false
	}
	from = Day(from)
	limit := from.AddDate(0, 0, SearchHorizonDays)

	d := from
	if anchor.After(d) {
		d = anchor
	}
	for ; !d.After(limit); d = d.AddDate(0, 0, 1) {
		if OccursOn(e, d) {
			return d, true
		}
	}
	return time.Time{}, false
}

package feed

import (
	"strings"
	"time"
)

// ISO calendar date layout used by every date string in an Event
const DateLayout = "2006-01-02"

// Earliest possible effective date, used for records with missing or malformed dates
var epoch = time.Unix(0, 0).UTC()

var weekdayNames = [7]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// Parse an ISO `YYYY-MM-DD` string into a UTC midnight time.
// Surrounding spaces are ignored.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Format a time as an ISO calendar date
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Truncate any time to its calendar day at UTC midnight, keeping the
// wall-clock date the caller sees. Dates are timezone-naive, so the
// location of t only decides which day it is.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Canonical weekday name ("Sunday" … "Saturday") of a date
func WeekdayName(t time.Time) string {
	return weekdayNames[t.Weekday()]
}

// Report whether name is one of the 7 canonical weekday names
func IsWeekdayName(name string) bool {
	for _, n := range weekdayNames {
		if n == name {
			return true
		}
	}
	return false
}

// Sunday that starts the week containing t
func weekStart(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}

// Whole days from a to b; both must be UTC midnights
func daysBetween(a, b time.Time) int {
	// time.Duration saturates after ~292 years, count in seconds instead
	return int((b.Unix() - a.Unix()) / 86400)
}

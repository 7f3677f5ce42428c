package ical

import (
	"fmt"
	"strings"
	"time"

	"bulletin/src-server/feed"

	"github.com/xyedo/rrule"
)

const rruleTimeLayout = "20060102T150405Z"

var weekdayCodes = map[string]string{
	"Sunday":    "SU",
	"Monday":    "MO",
	"Tuesday":   "TU",
	"Wednesday": "WE",
	"Thursday":  "TH",
	"Friday":    "FR",
	"Saturday":  "SA",
}

var allWeekdayCodes = []string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// Express a repeating event as an RFC 5545 RRULE value (without the
// "RRULE:" prefix) that yields exactly the days feed.OccursOn accepts.
// Returns false for single events and for rules that can never fire.
func RRule(e feed.Event) (string, bool) {
	if !e.Repeating {
		return "", false
	}
	anchor, ok := feed.ParseDate(e.AnchorDate)
	if !ok {
		return "", false
	}

	byDay := make([]string, 0, len(e.DaysOfWeek))
	for _, day := range e.DaysOfWeek {
		if code, ok := weekdayCodes[day]; ok {
			byDay = append(byDay, code)
		}
	}
	// only unknown names were listed, OccursOn never matches
	if len(e.DaysOfWeek) > 0 && len(byDay) == 0 {
		return "", false
	}

	parts := make([]string, 0, 4)
	switch e.Frequency {
	case feed.FrequencyDaily:
		parts = append(parts, "FREQ=DAILY")
	case feed.FrequencyWeekly:
		parts = append(parts, "FREQ=WEEKLY")
		if len(byDay) == 0 {
			byDay = allWeekdayCodes
		}
	case feed.FrequencyBiWeekly:
		parts = append(parts, "FREQ=WEEKLY", "INTERVAL=2", "WKST=SU")
		if len(byDay) == 0 {
			byDay = allWeekdayCodes
		}
	case feed.FrequencyMonthly:
		parts = append(parts, "FREQ=MONTHLY", fmt.Sprintf("BYMONTHDAY=%d", anchor.Day()))
	default:
		return "", false
	}
	if len(byDay) > 0 {
		parts = append(parts, "BYDAY="+strings.Join(byDay, ","))
	}
	return strings.Join(parts, ";"), true
}

// First day a repeating event happens, on or after its anchor. The anchor
// itself is only the first occurrence when it satisfies the rule.
func FirstOccurrence(e feed.Event) (time.Time, bool) {
	anchor, ok := feed.ParseDate(e.AnchorDate)
	if !ok {
		return time.Time{}, false
	}
	return feed.NextOccurrence(e, anchor)
}

// Parse the event's rule starting at its first occurrence, bounded by until
func RuleSet(e feed.Event, until time.Time) (*rrule.Set, error) {
	rule, ok := RRule(e)
	if !ok {
		return nil, fmt.Errorf("RuleSet: event %s has no recurrence rule", e.ID)
	}
	start, ok := FirstOccurrence(e)
	if !ok {
		return nil, fmt.Errorf("RuleSet: event %s never occurs", e.ID)
	}

	var sb strings.Builder
	sb.WriteString("DTSTART:" + start.Format(rruleTimeLayout))
	sb.WriteString("\nRRULE:" + rule + ";UNTIL=" + feed.Day(until).Format(rruleTimeLayout))

	set, err := rrule.StrToRRuleSet(sb.String())
	if err != nil {
		return nil, fmt.Errorf("RuleSet: %w", err)
	}
	return set, nil
}

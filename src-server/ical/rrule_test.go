package ical_test

import (
	"testing"

	"bulletin/src-server/feed"
	"bulletin/src-server/ical"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeating(anchor string, freq feed.Frequency, days ...string) feed.Event {
	return feed.Event{
		ID:         "r-" + anchor + "-" + string(freq),
		Title:      "Weekly chess",
		Repeating:  true,
		AnchorDate: anchor,
		Frequency:  freq,
		DaysOfWeek: days,
		Category:   []string{"club"},
		Location:   []string{"Gates"},
	}
}

func TestRRule(t *testing.T) {
	tests := []struct {
		name  string
		event feed.Event
		want  string
		ok    bool
	}{
		{"daily", repeating("2025-01-01", feed.FrequencyDaily), "FREQ=DAILY", true},
		{"daily on weekdays", repeating("2025-01-01", feed.FrequencyDaily, "Monday", "Friday"), "FREQ=DAILY;BYDAY=MO,FR", true},
		{"weekly", repeating("2025-01-06", feed.FrequencyWeekly, "Monday"), "FREQ=WEEKLY;BYDAY=MO", true},
		{"weekly without days", repeating("2025-01-06", feed.FrequencyWeekly), "FREQ=WEEKLY;BYDAY=SU,MO,TU,WE,TH,FR,SA", true},
		{"bi-weekly", repeating("2025-01-05", feed.FrequencyBiWeekly, "Sunday"), "FREQ=WEEKLY;INTERVAL=2;WKST=SU;BYDAY=SU", true},
		{"monthly", repeating("2025-01-31", feed.FrequencyMonthly), "FREQ=MONTHLY;BYMONTHDAY=31", true},
		{"monthly on weekday", repeating("2025-01-31", feed.FrequencyMonthly, "Friday"), "FREQ=MONTHLY;BYMONTHDAY=31;BYDAY=FR", true},
		{"unknown weekdays only", repeating("2025-01-01", feed.FrequencyDaily, "Funday"), "", false},
		{"unknown frequency", repeating("2025-01-01", feed.Frequency("yearly")), "", false},
		{"bad anchor", repeating("soon", feed.FrequencyDaily), "", false},
		{"single event", feed.Event{SingleEventDate: "2025-01-01"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ical.RRule(tt.event)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The exported rule must fire on exactly the days the feed shows the event.
func TestRuleSetAgreesWithOccursOn(t *testing.T) {
	events := []feed.Event{
		repeating("2025-01-01", feed.FrequencyDaily),
		repeating("2025-01-01", feed.FrequencyDaily, "Tuesday", "Saturday"),
		repeating("2025-01-06", feed.FrequencyWeekly, "Monday", "Wednesday"),
		repeating("2025-01-08", feed.FrequencyWeekly),
		repeating("2025-01-05", feed.FrequencyBiWeekly, "Sunday"),
		repeating("2025-01-08", feed.FrequencyBiWeekly, "Monday", "Friday"),
		repeating("2025-01-11", feed.FrequencyBiWeekly),
		repeating("2025-01-31", feed.FrequencyMonthly),
		repeating("2025-01-15", feed.FrequencyMonthly, "Wednesday", "Thursday"),
	}
	for _, e := range events {
		t.Run(e.ID, func(t *testing.T) {
			anchor, ok := feed.ParseDate(e.AnchorDate)
			require.True(t, ok)
			until := anchor.AddDate(0, 0, 400)

			set, err := ical.RuleSet(e, until)
			require.NoError(t, err)

			fired := make(map[string]bool)
			for _, occurrence := range set.All() {
				fired[feed.FormatDate(feed.Day(occurrence.UTC()))] = true
			}
			for d := anchor.AddDate(0, 0, -14); !d.After(until); d = d.AddDate(0, 0, 1) {
				day := feed.FormatDate(d)
				assert.Equal(t, feed.OccursOn(e, d), fired[day], day)
			}
		})
	}
}

func TestRuleSetRejectsSingleEvents(t *testing.T) {
	until, _ := feed.ParseDate("2026-01-01")
	_, err := ical.RuleSet(feed.Event{ID: "x", SingleEventDate: "2025-01-01"}, until)
	assert.Error(t, err)
}

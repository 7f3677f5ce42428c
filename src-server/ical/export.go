// Package ical renders a feed as an iCalendar (RFC 5545) document so
// students can subscribe to a filtered feed from their calendar app.
//
// Every poster becomes an all-day VEVENT. Repeating posters start on their
// first occurrence and carry an RRULE equivalent to the in-app recurrence
// rules.
package ical

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"bulletin/src-server/feed"

	ics "github.com/arran4/golang-ical"
)

const ProductID = "-//bulletin//campus events feed//EN"

// Build a calendar out of feed events. Events whose dates can't be
// resolved are left out and logged.
func Export(name string, events []feed.Event, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, e := range events {
		if err := addEvent(cal, e, stamp); err != nil {
			slog.Warn("skipping event in calendar export", "id", e.ID, "error", err)
		}
	}
	return cal
}

func Write(w io.Writer, name string, events []feed.Event, stamp time.Time) error {
	if err := Export(name, events, stamp).SerializeTo(w); err != nil {
		return fmt.Errorf("ical.Write: %w", err)
	}
	return nil
}

func addEvent(cal *ics.Calendar, e feed.Event, stamp time.Time) error {
	var start time.Time
	var rule string
	if e.Repeating {
		var ok bool
		if rule, ok = RRule(e); !ok {
			return fmt.Errorf("no valid recurrence rule")
		}
		// reject rules the recurrence library can't read back
		if _, err := RuleSet(e, stamp.AddDate(0, 0, feed.SearchHorizonDays)); err != nil {
			return err
		}
		// DTSTART always counts as an instance, so it must be a real one
		if start, ok = FirstOccurrence(e); !ok {
			return fmt.Errorf("never occurs")
		}
	} else {
		var ok bool
		if start, ok = feed.ParseDate(e.SingleEventDate); !ok {
			return fmt.Errorf("invalid event date %q", e.SingleEventDate)
		}
	}

	vevent := cal.AddEvent(e.ID + "@bulletin")
	vevent.SetDtStampTime(stamp)
	if !e.CreatedAt.IsZero() {
		vevent.SetCreatedTime(e.CreatedAt)
	}
	vevent.SetAllDayStartAt(start)
	vevent.SetAllDayEndAt(start.AddDate(0, 0, 1))
	vevent.SetSummary(e.Title)
	if description := describe(e); description != "" {
		vevent.SetDescription(description)
	}
	if len(e.Location) > 0 {
		vevent.SetLocation(strings.Join(e.Location, ", "))
	}
	if e.ImageURL != "" {
		vevent.SetURL(e.ImageURL)
	}
	for _, category := range e.Category {
		vevent.AddCategory(category)
	}
	for _, tag := range e.Tags {
		vevent.AddCategory(tag)
	}
	if rule != "" {
		vevent.AddRrule(rule)
	}
	return nil
}

func describe(e feed.Event) string {
	switch {
	case e.Organizer == "":
		return e.Description
	case e.Description == "":
		return "Organized by " + e.Organizer
	default:
		return "Organized by " + e.Organizer + "\n\n" + e.Description
	}
}

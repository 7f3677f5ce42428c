package feed

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Category path that disables the category stage
const AllCategories = "All"

// Filter criteria for one pass over the feed. The zero value admits every
// upcoming event.
type Criteria struct {
	// "All" or empty disables the category stage
	CategoryPath string
	// Zero value means unset; when set it replaces the upcoming-events check
	ExplicitDate time.Time
	SearchQuery  string
	// Multi-valued filters are OR-ed within themselves
	LocationFilter []string
	TagFilter      []string
}

type stage func(Event) bool

// Apply the criteria to events and return the survivors in input order.
//
// Stages run in this order, each on the survivors of the previous one:
// temporal admission, category, search, location, tags. The input slice is
// never modified.
func Filter(events []Event, c Criteria, today time.Time) []Event {
	// a Caser keeps state, so every pass gets its own
	fold := cases.Fold()
	stages := []stage{
		temporalStage(c, Day(today)),
		categoryStage(c),
		searchStage(c, fold),
		anyOfStage(c.LocationFilter, fold, func(e Event) []string { return e.Location }),
		anyOfStage(c.TagFilter, fold, func(e Event) []string { return e.Tags }),
	}

	current := slices.Clone(events)
	for _, admit := range stages {
		if admit == nil {
			continue
		}
		current = slices.DeleteFunc(current, func(e Event) bool { return !admit(e) })
	}
	if current == nil {
		current = []Event{}
	}
	return current
}

// Filter then sort; the single entry point used to render a feed
func Build(events []Event, c Criteria, today time.Time) []Event {
	return Sort(Filter(events, c, today))
}

func temporalStage(c Criteria, today time.Time) stage {
	if !c.ExplicitDate.IsZero() {
		date := Day(c.ExplicitDate)
		return func(e Event) bool {
			if e.Repeating {
				return OccursOn(e, date)
			}
			single, ok := ParseDate(e.SingleEventDate)
			return ok && single.Equal(date)
		}
	}
	return func(e Event) bool {
		if e.Repeating {
			_, ok := NextOccurrence(e, today)
			return ok
		}
		single, ok := ParseDate(e.SingleEventDate)
		return ok && !single.Before(today)
	}
}

func categoryStage(c Criteria) stage {
	if c.CategoryPath == "" || c.CategoryPath == AllCategories {
		return nil
	}
	return func(e Event) bool {
		return slices.Contains(e.Category, c.CategoryPath)
	}
}

func searchStage(c Criteria, fold cases.Caser) stage {
	if c.SearchQuery == "" {
		return nil
	}
	query := fold.String(c.SearchQuery)
	return func(e Event) bool {
		return strings.Contains(fold.String(e.Title), query) ||
			strings.Contains(fold.String(e.Description), query)
	}
}

// Admit events whose values (case-folded) intersect the wanted set
func anyOfStage(wanted []string, fold cases.Caser, values func(Event) []string) stage {
	if len(wanted) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		set[fold.String(w)] = struct{}{}
	}
	return func(e Event) bool {
		for _, v := range values(e) {
			if _, ok := set[fold.String(v)]; ok {
				return true
			}
		}
		return false
	}
}

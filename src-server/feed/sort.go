package feed

import (
	"slices"
	"strings"
)

// Return a new slice ordered by effective date, then creation time, both
// ascending. Events with malformed dates sort first instead of being dropped.
// ID breaks any remaining tie so the order does not depend on input order.
func Sort(events []Event) []Event {
	sorted := slices.Clone(events)
	if sorted == nil {
		return []Event{}
	}
	slices.SortStableFunc(sorted, func(a, b Event) int {
		if c := a.EffectiveDate().Compare(b.EffectiveDate()); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}

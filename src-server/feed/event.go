// The `feed` package decides when bulletin events happen and builds the
// filtered, ordered feed shown to users.
//
// Everything here is a pure function over an immutable snapshot: nothing is
// cached, nothing blocks, and the same inputs always produce the same output.
// Records are owned by an external writer and may be malformed; malformed
// dates never raise, they simply never match.
//
// # Example usage:
//
//	today := feed.Day(time.Now())
//	events := feed.Build(snapshot, feed.Criteria{CategoryPath: "career"}, today)
package feed

import "time"

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiWeekly Frequency = "bi-weekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Report whether f is one of the supported recurrence frequencies
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// A bulletin event as read by the engine.
//
// Exactly one of SingleEventDate or the recurrence fields (AnchorDate,
// Frequency, DaysOfWeek) is populated, depending on Repeating. The writer
// keeps that invariant and SortDate in sync; the engine only reads.
type Event struct {
	ID          string    `json:"id"`
	Category    []string  `json:"category"`
	Location    []string  `json:"location"`
	Tags        []string  `json:"tags"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Organizer   string    `json:"organizer,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	Repeating       bool      `json:"repeating"`
	SingleEventDate string    `json:"singleEventDate,omitempty"`
	AnchorDate      string    `json:"anchorDate,omitempty"`
	Frequency       Frequency `json:"frequency,omitempty"`
	DaysOfWeek      []string  `json:"daysOfWeek,omitempty"`

	SortDate string `json:"sortDate,omitempty"`
}

// Date used to position the event in the feed: SortDate when present,
// otherwise the anchor or single date. Malformed dates become the epoch.
func (e Event) EffectiveDate() time.Time {
	raw := e.SortDate
	if raw == "" {
		if e.Repeating {
			raw = e.AnchorDate
		} else {
			raw = e.SingleEventDate
		}
	}
	if t, ok := ParseDate(raw); ok {
		return t
	}
	return epoch
}

package feed_test

import (
	"testing"
	"time"

	"bulletin/src-server/feed"

	"github.com/stretchr/testify/assert"
)

func TestSortByEffectiveDate(t *testing.T) {
	later := single("later", "2025-06-01")
	sooner := single("sooner", "2025-05-01")
	anchored := repeating("2025-05-15", feed.FrequencyDaily)
	anchored.ID = "anchored"

	got := feed.Sort([]feed.Event{later, anchored, sooner})
	assert.Equal(t, []string{"sooner", "anchored", "later"}, ids(got))
}

func TestSortPrefersCachedSortDate(t *testing.T) {
	// the writer cached a date that differs from the rule fields
	cached := repeating("2025-09-01", feed.FrequencyDaily)
	cached.ID = "cached"
	cached.SortDate = "2025-01-01"
	plain := single("plain", "2025-02-01")

	assert.Equal(t, []string{"cached", "plain"}, ids(feed.Sort([]feed.Event{plain, cached})))
}

func TestSortTieBreaksOnCreatedAt(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first := single("first", "2025-05-01")
	first.CreatedAt = base
	second := single("second", "2025-05-01")
	second.CreatedAt = base.Add(time.Minute)
	unknown := single("unknown", "2025-05-01")

	got := feed.Sort([]feed.Event{second, first, unknown})
	assert.Equal(t, []string{"unknown", "first", "second"}, ids(got))
}

func TestSortKeepsMalformedDatesFirst(t *testing.T) {
	good := single("good", "1999-12-31")
	bad := single("bad", "31/12/1999")
	missing := feed.Event{ID: "missing"}

	got := feed.Sort([]feed.Event{good, bad, missing})
	assert.Equal(t, []string{"bad", "missing", "good"}, ids(got))
}

func TestSortReturnsCopy(t *testing.T) {
	events := []feed.Event{single("b", "2025-02-01"), single("a", "2025-01-01")}
	feed.Sort(events)
	assert.Equal(t, []string{"b", "a"}, ids(events))
	assert.NotNil(t, feed.Sort(nil))
}

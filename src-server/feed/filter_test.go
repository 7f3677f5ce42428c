package feed_test

import (
	"math/rand"
	"testing"
	"time"

	"bulletin/src-server/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func single(id, day string, category ...string) feed.Event {
	if len(category) == 0 {
		category = []string{"career"}
	}
	return feed.Event{
		ID:              id,
		SingleEventDate: day,
		SortDate:        day,
		Category:        category,
		Location:        []string{"University Center"},
	}
}

func ids(events []feed.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestFilterSingleEventToday(t *testing.T) {
	events := []feed.Event{single("fair", "2025-03-01", "career")}

	got := feed.Filter(events, feed.Criteria{CategoryPath: feed.AllCategories}, date(t, "2025-03-01"))
	assert.Equal(t, []string{"fair"}, ids(got))

	got = feed.Filter(events, feed.Criteria{CategoryPath: feed.AllCategories}, date(t, "2025-03-02"))
	assert.Empty(t, got)
}

func TestFilterUpcomingRepeating(t *testing.T) {
	weekly := repeating("2025-01-06", feed.FrequencyWeekly, "Monday")
	weekly.ID = "weekly"
	future := repeating("2027-06-01", feed.FrequencyDaily)
	future.ID = "too-far"
	broken := repeating("", feed.FrequencyDaily)
	broken.ID = "broken"

	got := feed.Filter([]feed.Event{weekly, future, broken}, feed.Criteria{}, date(t, "2025-06-10"))
	assert.Equal(t, []string{"weekly"}, ids(got))
}

func TestFilterExplicitDateReplacesUpcoming(t *testing.T) {
	past := single("past", "2024-12-01")
	other := single("other", "2024-12-02")
	weekly := repeating("2024-11-04", feed.FrequencyWeekly, "Sunday", "Monday")
	weekly.ID = "weekly"

	c := feed.Criteria{ExplicitDate: date(t, "2024-12-01")}
	got := feed.Filter([]feed.Event{past, other, weekly}, c, date(t, "2025-06-10"))
	assert.Equal(t, []string{"past", "weekly"}, ids(got))
}

func TestFilterMalformedSingleDate(t *testing.T) {
	events := []feed.Event{single("garbage", "soon"), single("empty", "")}

	assert.Empty(t, feed.Filter(events, feed.Criteria{}, date(t, "2025-01-01")))
	assert.Empty(t, feed.Filter(events, feed.Criteria{ExplicitDate: date(t, "2025-01-01")}, date(t, "2025-01-01")))
}

func TestFilterCategory(t *testing.T) {
	events := []feed.Event{
		single("a", "2025-05-01", "career", "club"),
		single("b", "2025-05-01", "sports"),
		single("c", "2025-05-01", "Career"),
	}
	today := date(t, "2025-04-01")

	assert.Equal(t, []string{"a"}, ids(feed.Filter(events, feed.Criteria{CategoryPath: "career"}, today)))
	assert.Len(t, feed.Filter(events, feed.Criteria{CategoryPath: "All"}, today), 3)
	assert.Len(t, feed.Filter(events, feed.Criteria{}, today), 3)
}

func TestFilterSearch(t *testing.T) {
	a := single("a", "2025-05-01")
	a.Title = "Spring CAREER Fair"
	b := single("b", "2025-05-01")
	b.Title = "Open mic"
	b.Description = "Bring your career stories"
	c := single("c", "2025-05-01")
	c.Title = "Yoga"

	got := feed.Filter([]feed.Event{a, b, c}, feed.Criteria{SearchQuery: "Career"}, date(t, "2025-04-01"))
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestFilterLocation(t *testing.T) {
	a := single("a", "2025-05-01")
	a.Location = []string{"Gates", "Wean"}
	b := single("b", "2025-05-01")
	b.Location = []string{"Hunt Library"}
	c := single("c", "2025-05-01")
	c.Location = []string{"Online"}

	c1 := feed.Criteria{LocationFilter: []string{"wean", "online"}}
	assert.Equal(t, []string{"a", "c"}, ids(feed.Filter([]feed.Event{a, b, c}, c1, date(t, "2025-04-01"))))
}

func TestFilterTags(t *testing.T) {
	a := single("a", "2025-05-01")
	a.Tags = []string{"Career Fair", "Free Food"}
	b := single("b", "2025-05-01")
	b.Tags = []string{"career"}
	c := single("c", "2025-05-01")

	got := feed.Filter([]feed.Event{a, b, c}, feed.Criteria{TagFilter: []string{"career fair"}}, date(t, "2025-04-01"))
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestFilterStagesAreConjunctive(t *testing.T) {
	match := single("match", "2025-05-01", "club")
	match.Title = "Chess club"
	match.Tags = []string{"Games"}
	wrongTag := single("wrong-tag", "2025-05-01", "club")
	wrongTag.Title = "Chess club"
	wrongTag.Tags = []string{"sports"}
	wrongCategory := single("wrong-category", "2025-05-01", "sports")
	wrongCategory.Title = "Chess club"
	wrongCategory.Tags = []string{"games"}
	past := single("past", "2025-03-01", "club")
	past.Title = "Chess club"
	past.Tags = []string{"games"}

	c := feed.Criteria{
		CategoryPath:   "club",
		SearchQuery:    "chess",
		LocationFilter: []string{"university center"},
		TagFilter:      []string{"GAMES"},
	}
	got := feed.Filter([]feed.Event{match, wrongTag, wrongCategory, past}, c, date(t, "2025-04-01"))
	assert.Equal(t, []string{"match"}, ids(got))
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	events := []feed.Event{single("old", "2020-01-01"), single("new", "2030-01-01")}
	before := ids(events)

	feed.Filter(events, feed.Criteria{}, date(t, "2025-01-01"))
	assert.Equal(t, before, ids(events))
}

func sampleFeed() []feed.Event {
	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	events := []feed.Event{
		single("s1", "2025-04-02", "career"),
		single("s2", "2025-04-02", "career"),
		single("s3", "2025-05-20", "club"),
		single("s4", "2024-01-01", "club"),
		repeating("2025-01-06", feed.FrequencyWeekly, "Monday", "Wednesday"),
		repeating("2025-03-31", feed.FrequencyMonthly),
		repeating("2025-02-02", feed.FrequencyBiWeekly, "Sunday"),
	}
	for i := range events {
		events[i].CreatedAt = created.Add(time.Duration(len(events)-i) * time.Hour)
		events[i].Tags = []string{"free food"}
	}
	return events
}

func TestBuildIsDeterministic(t *testing.T) {
	events := sampleFeed()
	c := feed.Criteria{TagFilter: []string{"Free Food"}}
	today := date(t, "2025-04-01")

	first := feed.Build(events, c, today)
	second := feed.Build(events, c, today)
	require.Equal(t, first, second)

	shuffled := append([]feed.Event(nil), events...)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	assert.Equal(t, first, feed.Build(shuffled, c, today))
}

func TestBuildOrdersFilteredFeed(t *testing.T) {
	got := feed.Build(sampleFeed(), feed.Criteria{}, date(t, "2025-04-01"))

	// s2 was created before s1 on the same date
	assert.Equal(t, []string{
		"r-2025-01-06-weekly",
		"r-2025-02-02-bi-weekly",
		"r-2025-03-31-monthly",
		"s2",
		"s1",
		"s3",
	}, ids(got))
}

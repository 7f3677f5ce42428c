package feed_test

import (
	"testing"

	"bulletin/src-server/feed"

	"github.com/stretchr/testify/assert"
)

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"career fair", "Free Food"}, feed.ParseTags(" career fair, ,Free Food ,"))
	assert.Empty(t, feed.ParseTags(""))
}

func TestTagCounts(t *testing.T) {
	events := []feed.Event{
		{Tags: []string{"Free Food", "career"}},
		{Tags: []string{"free food", "Music"}},
		{Tags: []string{"FREE FOOD", "music", " "}},
		{},
	}

	assert.Equal(t, []feed.TagCount{
		{Tag: "free food", Count: 3},
		{Tag: "music", Count: 2},
		{Tag: "career", Count: 1},
	}, feed.TagCounts(events))
}

func TestWeekdayNames(t *testing.T) {
	assert.Equal(t, "Monday", feed.WeekdayName(date(t, "2025-01-06")))
	assert.True(t, feed.IsWeekdayName("Saturday"))
	assert.False(t, feed.IsWeekdayName("saturday"))
}

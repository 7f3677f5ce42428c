package feed

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Split a legacy comma-separated tag string, trimming blanks
func ParseTags(s string) []string {
	tags := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Count how many events carry each tag, case-insensitively, most used first.
// Tags are reported case-folded; equal counts are ordered by tag.
func TagCounts(events []Event) []TagCount {
	fold := cases.Fold()
	counts := make(map[string]int)
	for _, e := range events {
		for _, tag := range e.Tags {
			tag = fold.String(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			counts[tag]++
		}
	}

	tally := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		tally = append(tally, TagCount{Tag: tag, Count: count})
	}
	slices.SortFunc(tally, func(a, b TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	return tally
}

package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var labelReplacer = strings.NewReplacer("-", " ", "_", " ")

// Label turns a configured key such as "student-life" into "Student Life"
// for calendar names and digest embeds.
func Label(s string) string {
	s = labelReplacer.Replace(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	s = cases.Title(language.English).String(s)
	return strings.TrimSuffix(s, ".")
}

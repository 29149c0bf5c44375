package document

import (
	"regexp"
	"strconv"
)

var (
	requirementHeading = regexp.MustCompile(`(?i)^(?:Requirement|需求)\s*(\d+)\b`)
	numberedHeading    = regexp.MustCompile(`^(\d+\.\d+)\s`)
	numberedItem       = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+\S`)
)

// RequirementIDs extracts "N.M" identifiers from a requirements document:
// numbered criteria below "Requirement N" headings, and headings that start
// with an "N.M" number. Order of first appearance is kept.
func RequirementIDs(text string) []string {
	var ids []string
	seen := map[string]bool{}
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	headings := Headings(text)
	for i, h := range headings {
		if m := numberedHeading.FindStringSubmatch(h.Title); m != nil {
			add(m[1])
			continue
		}
		m := requirementHeading.FindStringSubmatch(h.Title)
		if m == nil {
			continue
		}
		span := SectionSpan(text, headings, i)
		body := text[h.End:span.End]
		items := numberedItem.FindAllStringIndex(body, -1)
		for n := range items {
			add(m[1] + "." + strconv.Itoa(n+1))
		}
	}
	return ids
}

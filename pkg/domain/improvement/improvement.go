package improvement

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

// Category is the closed set of improvement kinds. Consumers switch over it
// exhaustively; Categories lists every member.
type Category int

const (
	AddSection Category = iota + 1
	StrengthenCriteria
	AddNonFunctionalRequirement
	AddErrorHandling
	AddEdgeCases
	AddGlossaryTerm
	AddComponentDetail
	AddTraceability
	AddProperties
	AddRationale
	AddDiagram
)

var categoryNames = map[Category]string{
	AddSection:                  "add-section",
	StrengthenCriteria:          "strengthen-criteria",
	AddNonFunctionalRequirement: "add-nonfunctional-requirement",
	AddErrorHandling:            "add-error-handling",
	AddEdgeCases:                "add-edge-cases",
	AddGlossaryTerm:             "add-glossary-term",
	AddComponentDetail:          "add-component-detail",
	AddTraceability:             "add-traceability",
	AddProperties:               "add-properties",
	AddRationale:                "add-rationale",
	AddDiagram:                  "add-diagram",
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryNames))
	for c := AddSection; c <= AddDiagram; c++ {
		out = append(out, c)
	}
	return out
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func ParseCategory(s string) (Category, error) {
	for c, n := range categoryNames {
		if n == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) MarshalText() ([]byte, error) {
	if _, ok := categoryNames[c]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Priority orders improvements; lower values are applied first.
type Priority int

const (
	PriorityHigh Priority = iota + 1
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Metadata carries structured hints for the mutator. Counts are hints:
// strategies recount against the working text.
type Metadata struct {
	Current        int               `json:"current,omitempty"`
	Target         int               `json:"target,omitempty"`
	Missing        []string          `json:"missing,omitempty"`
	RequirementIDs []string          `json:"requirement_ids,omitempty"`
	Marker         document.Marker   `json:"marker,omitempty"`
	Language       document.Language `json:"language,omitempty"`
}

// Improvement is one proposed change. Improvements are recomputed every cycle
// and never mutated.
type Improvement struct {
	Category      Category          `json:"category"`
	Criterion     quality.Criterion `json:"criterion"`
	TargetSection string            `json:"target_section"`
	Description   string            `json:"description"`
	Priority      Priority          `json:"priority"`
	Metadata      Metadata          `json:"metadata"`
}

func (i Improvement) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Priority, i.Category, i.Description)
}

// SortByPriority orders improvements high to low, keeping the relative order
// within a tier.
func SortByPriority(imps []Improvement) []Improvement {
	out := append([]Improvement(nil), imps...)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Priority < out[b].Priority })
	return out
}

package quality

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

const maxSuggestions = 5

// BreakdownLine is one criterion row of a weighted breakdown.
type BreakdownLine struct {
	Criterion   Criterion `json:"criterion"`
	Description string    `json:"description"`
	Weight      float64   `json:"weight"`
	Raw         float64   `json:"raw"`
	Weighted    float64   `json:"weighted"`
}

// Breakdown explains how an assessment's total was composed.
type Breakdown struct {
	Kind            document.Kind     `json:"kind"`
	Language        document.Language `json:"language"`
	Total           float64           `json:"total"`
	Lines           []BreakdownLine   `json:"lines"`
	MissingSections []string          `json:"missing_sections,omitempty"`
	Suggestions     []string          `json:"suggestions,omitempty"`
}

func NewBreakdown(a Assessment) Breakdown {
	b := Breakdown{
		Kind:            a.Kind,
		Language:        a.Language,
		Total:           a.Score,
		MissingSections: append([]string(nil), a.MissingSections...),
	}
	for _, r := range a.Criteria {
		b.Lines = append(b.Lines, BreakdownLine{
			Criterion:   r.Criterion,
			Description: Describe(r.Criterion, a.Language),
			Weight:      r.Weight,
			Raw:         r.Raw,
			Weighted:    r.Contribution,
		})
	}
	issues := a.Issues
	if len(issues) > maxSuggestions {
		issues = issues[:maxSuggestions]
	}
	b.Suggestions = append(b.Suggestions, issues...)
	return b
}

type breakdownLabels struct {
	title, scores, weighted, missing, suggestions, total string
}

var breakdownText = map[document.Language]breakdownLabels{
	document.LanguageEN: {"## Scoring Breakdown", "### Criterion Scores", "Weighted", "### Missing Sections", "### Improvement Suggestions", "Total"},
	document.LanguageZH: {"## 评分分解", "### 各项评分", "加权分", "### 缺失章节", "### 改进建议", "总分"},
}

// Markdown renders the breakdown in its own language.
func (b Breakdown) Markdown() string {
	l, ok := breakdownText[b.Language]
	if !ok {
		l = breakdownText[document.LanguageEN]
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n%s: %.2f/10\n\n%s\n\n", l.title, l.total, b.Total, l.scores)
	for _, line := range b.Lines {
		fmt.Fprintf(&sb, "- **%s** (%.0f%%): %.2f/10 → %s %.2f\n",
			line.Description, line.Weight*100, line.Raw, l.weighted, line.Weighted)
	}
	if len(b.MissingSections) > 0 {
		fmt.Fprintf(&sb, "\n%s\n\n", l.missing)
		for _, s := range b.MissingSections {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}
	if len(b.Suggestions) > 0 {
		fmt.Fprintf(&sb, "\n%s\n\n", l.suggestions)
		for i, s := range b.Suggestions {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
		}
	}
	return sb.String()
}

package quality

import "github.com/felixgeelhaar/specgate/pkg/domain/document"

// Assessment is the immutable result of one scoring pass.
type Assessment struct {
	Kind               document.Kind
	Language           document.Language
	Score              float64
	CriterionScores    map[Criterion]float64
	Criteria           []CriterionResult
	MissingSections    []string
	IncompleteSections []string
	Issues             []string

	// Design assessments only: identifiers found in the companion
	// requirements document and those the design never references.
	RequirementIDs           []string
	UnreferencedRequirements []string
}

// Result returns the measurement for c.
func (a Assessment) Result(c Criterion) (CriterionResult, bool) {
	for _, r := range a.Criteria {
		if r.Criterion == c {
			return r, true
		}
	}
	return CriterionResult{}, false
}

// Meets reports whether the score reaches threshold.
func (a Assessment) Meets(threshold float64) bool {
	return MeetsThreshold(a.Score, threshold)
}

// MeetsThreshold compares a two-decimal score against a threshold, ignoring
// float noise.
func MeetsThreshold(score, threshold float64) bool {
	return score+epsilon >= threshold
}

package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

// ScoreOptions carries the optional inputs of a scoring pass.
type ScoreOptions struct {
	// Companion is the requirements document a design is traced against.
	Companion string
	// Language overrides detection when set.
	Language document.Language
}

// Scorer maps document text to an Assessment. It holds no state besides its
// weight configuration and is safe for concurrent use.
type Scorer struct {
	weights map[document.Kind]Weights
}

type ScorerOption func(*Scorer)

// WithWeights replaces the weight set of kind. Sets that do not sum to 1.0
// are renormalized.
func WithWeights(kind document.Kind, w Weights) ScorerOption {
	return func(s *Scorer) {
		merged := DefaultWeights(kind)
		for c, v := range w {
			if _, ok := merged[c]; ok {
				merged[c] = v
			}
		}
		merged, _ = merged.Normalize()
		s.weights[kind] = merged
	}
}

func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{weights: map[document.Kind]Weights{
		document.KindRequirements: DefaultRequirementsWeights(),
		document.KindDesign:       DefaultDesignWeights(),
	}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns a copy of the weight set used for kind.
func (s *Scorer) Weights(kind document.Kind) Weights {
	return s.weights[kind].Clone()
}

// Score dispatches on kind.
func (s *Scorer) Score(kind document.Kind, text string, opts ScoreOptions) Assessment {
	switch kind {
	case document.KindDesign:
		return s.ScoreDesign(text, opts.Companion, opts.Language)
	case document.KindTasks:
		return AssessTasks(text).Assessment()
	default:
		return s.ScoreRequirements(text, opts.Language)
	}
}

func (s *Scorer) ScoreRequirements(text string, lang document.Language) Assessment {
	lang = document.Resolve(text, lang)
	a := s.evaluate(document.KindRequirements, text, lang)

	if r, ok := a.Result(CriterionEARS); ok && r.Observed < r.Target {
		a.Issues = append(a.Issues, fmt.Sprintf(message(lang, msgFewCriteria), r.Observed, r.Target))
	}
	if r, ok := a.Result(CriterionStories); ok && r.Observed < r.Target {
		a.Issues = append(a.Issues, fmt.Sprintf(message(lang, msgFewStories), r.Observed, r.Target))
	}
	if r, ok := a.Result(CriterionAcceptance); ok && r.Observed < r.Target {
		a.Issues = append(a.Issues, fmt.Sprintf(message(lang, msgFewAcceptance), r.Observed, r.Target))
	}
	if r, ok := a.Result(CriterionNFR); ok && len(r.MissingTerms) > 0 {
		// en documents are only flagged once more than half the vocabulary is absent.
		if lang == document.LanguageZH || len(r.MissingTerms) > 3 {
			missing := r.MissingTerms
			if lang == document.LanguageEN && len(missing) > 3 {
				missing = missing[:3]
			}
			a.Issues = append(a.Issues, fmt.Sprintf(message(lang, msgMissingNFR), strings.Join(missing, ", ")))
		}
	}
	return a
}

// ScoreDesign scores a design document. When companion is non-empty its
// requirement identifiers are checked for references from the design.
func (s *Scorer) ScoreDesign(text, companion string, lang document.Language) Assessment {
	lang = document.Resolve(text, lang)
	a := s.evaluate(document.KindDesign, text, lang)

	if r, ok := a.Result(CriterionTraceability); ok && r.Observed < r.Target {
		a.Issues = append(a.Issues, fmt.Sprintf(message(lang, msgFewTraceRefs), r.Observed, r.Target))
	}
	if r, ok := a.Result(CriterionDiagrams); ok && r.Observed == 0 {
		a.MissingSections = append(a.MissingSections, message(lang, msgNoDiagrams))
	}

	if companion != "" {
		a.RequirementIDs = document.RequirementIDs(companion)
		for _, id := range a.RequirementIDs {
			if !references(text, id) {
				a.UnreferencedRequirements = append(a.UnreferencedRequirements, id)
			}
		}
		if len(a.UnreferencedRequirements) > 0 {
			a.Issues = append(a.Issues, fmt.Sprintf(message(lang, msgUnreferenced), strings.Join(a.UnreferencedRequirements, ", ")))
		}
	}
	return a
}

func (s *Scorer) evaluate(kind document.Kind, text string, lang document.Language) Assessment {
	loc := document.LocaleFor(lang)
	weights := s.weights[kind]
	a := Assessment{
		Kind:            kind,
		Language:        loc.Language(),
		CriterionScores: make(map[Criterion]float64),
	}
	total := 0.0
	for _, r := range rules[kind][loc.Language()] {
		res := r.evaluate(loc, text, weights[r.criterion])
		a.Criteria = append(a.Criteria, res)
		a.CriterionScores[r.criterion] = res.Raw
		total += res.Contribution
		for _, m := range res.MissingMarkers {
			a.MissingSections = append(a.MissingSections, loc.Label(m))
		}
		if r.target > 0 && res.Observed > 0 && res.Observed < r.target {
			a.IncompleteSections = append(a.IncompleteSections, Describe(r.criterion, loc.Language()))
		}
	}
	a.Score = clampScore(total)
	return a
}

func clampScore(v float64) float64 {
	v = math.Round(v*100) / 100
	return math.Max(0, math.Min(v, 10))
}

func references(text, id string) bool {
	re := regexp.MustCompile(`(?:^|[^\d.])` + regexp.QuoteMeta(id) + `(?:[^\d]|$)`)
	return re.MatchString(text)
}

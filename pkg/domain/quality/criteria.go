package quality

import (
	"math"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

// Criterion is one independently scored dimension of document quality.
type Criterion string

const (
	CriterionStructure    Criterion = "structure"
	CriterionEARS         Criterion = "ears_format"
	CriterionStories      Criterion = "user_stories"
	CriterionAcceptance   Criterion = "acceptance_criteria"
	CriterionNFR          Criterion = "nfr_coverage"
	CriterionConstraints  Criterion = "constraints"
	CriterionTraceability Criterion = "traceability"
	CriterionDiagrams     Criterion = "diagrams"
	CriterionTechnology   Criterion = "technology"
	CriterionNFRDesign    Criterion = "nfr_design"
	CriterionInterfaces   Criterion = "interfaces"
	CriterionCompletion   Criterion = "completion_rate"
)

type measure int

const (
	measureMarkers    measure = iota // cap split evenly across markers
	measurePresence                  // full cap when any marker is present
	measureIdiom                     // count of idiom occurrences
	measureVocabulary                // count of vocabulary terms present
)

// rule describes how one criterion is measured for one (kind, locale). cap
// and unit are the unweighted base values; weighting rescales both.
type rule struct {
	criterion Criterion
	measure   measure
	markers   []document.Marker
	idiom     document.Idiom
	vocab     document.Vocabulary
	unit      float64
	cap       float64
	target    int
}

var requirementsStructure = map[document.Language][]document.Marker{
	document.LanguageEN: {document.MarkerIntroduction, document.MarkerGlossary, document.MarkerRequirements, document.MarkerNonFunctional},
	document.LanguageZH: {document.MarkerIntroduction, document.MarkerStories, document.MarkerRequirements, document.MarkerNonFunctional},
}

var designStructure = []document.Marker{
	document.MarkerOverview, document.MarkerArchitecture, document.MarkerComponents, document.MarkerInterfaces,
}

var rules = map[document.Kind]map[document.Language][]rule{
	document.KindRequirements: {
		document.LanguageEN: {
			{criterion: CriterionStructure, measure: measureMarkers, markers: requirementsStructure[document.LanguageEN], cap: 2},
			{criterion: CriterionEARS, measure: measureIdiom, idiom: document.IdiomCriterion, unit: 0.15, cap: 2, target: 5},
			{criterion: CriterionStories, measure: measureIdiom, idiom: document.IdiomStory, unit: 0.25, cap: 2, target: 3},
			{criterion: CriterionAcceptance, measure: measureIdiom, idiom: document.IdiomAcceptance, unit: 0.3, cap: 2, target: 5},
			{criterion: CriterionNFR, measure: measureVocabulary, vocab: document.VocabNFR, unit: 0.15, cap: 1},
			{criterion: CriterionConstraints, measure: measurePresence, markers: []document.Marker{document.MarkerConstraints}, cap: 1},
		},
		document.LanguageZH: {
			{criterion: CriterionStructure, measure: measureMarkers, markers: requirementsStructure[document.LanguageZH], cap: 2},
			{criterion: CriterionEARS, measure: measureIdiom, idiom: document.IdiomCriterion, unit: 0.2, cap: 2, target: 5},
			{criterion: CriterionStories, measure: measureIdiom, idiom: document.IdiomStory, unit: 0.3, cap: 2, target: 3},
			{criterion: CriterionAcceptance, measure: measureIdiom, idiom: document.IdiomAcceptance, unit: 0.4, cap: 2, target: 5},
			{criterion: CriterionNFR, measure: measureVocabulary, vocab: document.VocabNFR, unit: 0.2, cap: 1},
			{criterion: CriterionConstraints, measure: measurePresence, markers: []document.Marker{document.MarkerConstraints}, cap: 1},
		},
	},
	document.KindDesign: {
		document.LanguageEN: {
			{criterion: CriterionStructure, measure: measureMarkers, markers: designStructure, cap: 2},
			{criterion: CriterionTraceability, measure: measureIdiom, idiom: document.IdiomTraceRef, unit: 0.15, cap: 2, target: 3},
			{criterion: CriterionDiagrams, measure: measureIdiom, idiom: document.IdiomDiagram, unit: 0.4, cap: 1.5, target: 1},
			{criterion: CriterionTechnology, measure: measureVocabulary, vocab: document.VocabTechnology, unit: 0.2, cap: 1.5},
			{criterion: CriterionNFRDesign, measure: measureVocabulary, vocab: document.VocabNFRDesign, unit: 0.25, cap: 1.5},
			{criterion: CriterionInterfaces, measure: measureIdiom, idiom: document.IdiomInterface, unit: 0.3, cap: 1.5},
		},
		document.LanguageZH: {
			{criterion: CriterionStructure, measure: measureMarkers, markers: designStructure, cap: 2},
			{criterion: CriterionTraceability, measure: measureIdiom, idiom: document.IdiomTraceRef, unit: 0.2, cap: 2, target: 3},
			{criterion: CriterionDiagrams, measure: measureIdiom, idiom: document.IdiomDiagram, unit: 0.5, cap: 1.5, target: 1},
			{criterion: CriterionTechnology, measure: measureVocabulary, vocab: document.VocabTechnology, unit: 0.25, cap: 1.5},
			{criterion: CriterionNFRDesign, measure: measureVocabulary, vocab: document.VocabNFRDesign, unit: 0.3, cap: 1.5},
			{criterion: CriterionInterfaces, measure: measureIdiom, idiom: document.IdiomInterface, unit: 0.4, cap: 1.5},
		},
	},
}

// Criteria returns the criteria evaluated for kind, in evaluation order.
func Criteria(kind document.Kind) []Criterion {
	rs := rules[kind][document.LanguageEN]
	out := make([]Criterion, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.criterion)
	}
	return out
}

// CriterionResult is the measurement of one criterion.
type CriterionResult struct {
	Criterion      Criterion
	Observed       int     // markers, occurrences or terms found
	Saturation     int     // occurrences needed to reach the cap
	Target         int     // advisory density target, 0 when none
	Raw            float64 // 0-10 before weighting
	Weight         float64
	Cap            float64 // weight * 10
	Contribution   float64 // weighted share of the total score
	Satisfied      bool
	MissingMarkers []document.Marker
	MissingTerms   []string
}

const epsilon = 1e-9

func (r rule) perUnit() float64 {
	switch r.measure {
	case measureMarkers:
		return r.cap / float64(len(r.markers))
	case measurePresence:
		return r.cap
	}
	return r.unit
}

func (r rule) evaluate(loc document.Locale, text string, weight float64) CriterionResult {
	res := CriterionResult{Criterion: r.criterion, Target: r.target, Weight: weight}
	switch r.measure {
	case measureMarkers:
		for _, m := range r.markers {
			if loc.HasMarker(text, m) {
				res.Observed++
			} else {
				res.MissingMarkers = append(res.MissingMarkers, m)
			}
		}
	case measurePresence:
		for _, m := range r.markers {
			if loc.HasMarker(text, m) {
				res.Observed = 1
				break
			}
		}
		if res.Observed == 0 {
			res.MissingMarkers = append(res.MissingMarkers, r.markers...)
		}
	case measureIdiom:
		res.Observed = loc.CountIdiom(text, r.idiom)
	case measureVocabulary:
		res.MissingTerms = loc.MissingTerms(text, r.vocab)
		res.Observed = len(loc.Terms(r.vocab)) - len(res.MissingTerms)
	}

	unit := r.perUnit()
	res.Saturation = int(math.Ceil(r.cap/unit - epsilon))
	base := math.Min(float64(res.Observed)*unit, r.cap)
	res.Satisfied = base >= r.cap-epsilon
	if r.measure == measureVocabulary {
		// Some vocabularies cannot reach the cap; full coverage is the ceiling.
		if n := len(loc.Terms(r.vocab)); n < res.Saturation {
			res.Saturation = n
		}
		res.Satisfied = res.Satisfied || len(res.MissingTerms) == 0
	}
	res.Raw = base / r.cap * 10
	res.Cap = weight * 10
	res.Contribution = base / r.cap * res.Cap
	return res
}

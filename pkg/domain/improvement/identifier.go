package improvement

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

// Identifier turns an assessment into an ordered list of improvements. It is
// a pure function of (text, assessment).
type Identifier struct{}

func NewIdentifier() *Identifier {
	return &Identifier{}
}

// Identify emits one improvement per deficient criterion (one per missing
// heading for structure). Satisfied criteria never produce an improvement,
// so an empty result means there is nothing left to do.
func (id *Identifier) Identify(text string, a quality.Assessment) []Improvement {
	if a.Kind == document.KindTasks {
		return nil
	}
	loc := document.LocaleFor(a.Language)
	lang := loc.Language()
	var out []Improvement
	add := func(imp Improvement) {
		imp.Metadata.Language = lang
		out = append(out, imp)
	}

	for _, r := range a.Criteria {
		if r.Satisfied {
			continue
		}
		counts := Metadata{Current: r.Observed, Target: r.Saturation}
		switch r.Criterion {
		case quality.CriterionStructure:
			for _, m := range r.MissingMarkers {
				cat, prio := structural(m)
				add(Improvement{
					Category:      cat,
					Criterion:     r.Criterion,
					TargetSection: loc.Label(m),
					Description:   describe(lang, descSection, loc.Label(m)),
					Priority:      prio,
					Metadata:      Metadata{Marker: m},
				})
			}
		case quality.CriterionEARS:
			add(density(r, StrengthenCriteria, targetLabel(lang, labelAcceptance), describe(lang, descCriteria, r.Observed, goal(r)), counts))
		case quality.CriterionStories:
			add(density(r, StrengthenCriteria, targetLabel(lang, labelStories), describe(lang, descStories, r.Observed, goal(r)), counts))
		case quality.CriterionAcceptance:
			add(density(r, AddEdgeCases, targetLabel(lang, labelAcceptance), describe(lang, descEdgeCases, r.Observed, goal(r)), counts))
		case quality.CriterionNFR:
			add(coverage(r, AddNonFunctionalRequirement, loc, document.MarkerNonFunctional, describe(lang, descNFR, join(lang, r.MissingTerms))))
		case quality.CriterionConstraints:
			add(Improvement{
				Category:      AddSection,
				Criterion:     r.Criterion,
				TargetSection: loc.Label(document.MarkerConstraints),
				Description:   describe(lang, descSection, loc.Label(document.MarkerConstraints)),
				Priority:      PriorityLow,
				Metadata:      Metadata{Marker: document.MarkerConstraints},
			})
		case quality.CriterionTraceability:
			cat, marker, desc := AddTraceability, document.MarkerTraceability, descTraceability
			if loc.HasMarker(text, document.MarkerProperties) {
				cat, marker, desc = AddProperties, document.MarkerProperties, descProperties
			}
			md := counts
			md.Marker = marker
			md.RequirementIDs = orderIDs(a.UnreferencedRequirements, a.RequirementIDs)
			add(density(r, cat, loc.Label(marker), describe(lang, desc, r.Observed, goal(r)), md))
		case quality.CriterionDiagrams:
			md := counts
			md.Marker = document.MarkerArchitecture
			add(density(r, AddDiagram, loc.Label(document.MarkerArchitecture), describe(lang, descDiagram, r.Observed, goal(r)), md))
		case quality.CriterionTechnology:
			add(coverage(r, AddRationale, loc, document.MarkerTechnology, describe(lang, descRationale, join(lang, r.MissingTerms))))
		case quality.CriterionNFRDesign:
			if onlyErrorTerms(loc, r.MissingTerms) {
				add(coverage(r, AddErrorHandling, loc, document.MarkerErrorHandling, describe(lang, descErrorHandling, join(lang, r.MissingTerms))))
			} else {
				add(coverage(r, AddNonFunctionalRequirement, loc, document.MarkerNFRDesign, describe(lang, descNFRDesign, join(lang, r.MissingTerms))))
			}
		case quality.CriterionInterfaces:
			md := counts
			md.Marker = document.MarkerComponents
			add(density(r, AddComponentDetail, loc.Label(document.MarkerComponents), describe(lang, descComponents, r.Observed, goal(r)), md))
		}
	}
	return SortByPriority(out)
}

func structural(m document.Marker) (Category, Priority) {
	switch m {
	case document.MarkerGlossary:
		return AddGlossaryTerm, PriorityLow
	case document.MarkerNonFunctional:
		return AddNonFunctionalRequirement, PriorityHigh
	case document.MarkerComponents:
		return AddComponentDetail, PriorityHigh
	}
	return AddSection, PriorityHigh
}

// density builds an improvement for a count-based criterion. Fewer than half
// of the advisory target is high priority. Metadata.Target keeps the
// saturation count so the mutator knows how much to add.
func density(r quality.CriterionResult, cat Category, target, desc string, md Metadata) Improvement {
	prio := PriorityMedium
	if r.Observed*2 < goal(r) {
		prio = PriorityHigh
	}
	return Improvement{
		Category:      cat,
		Criterion:     r.Criterion,
		TargetSection: target,
		Description:   desc,
		Priority:      prio,
		Metadata:      md,
	}
}

// goal is the advisory density target, or the saturation count for criteria
// without one.
func goal(r quality.CriterionResult) int {
	if r.Target > 0 {
		return r.Target
	}
	return r.Saturation
}

func coverage(r quality.CriterionResult, cat Category, loc document.Locale, m document.Marker, desc string) Improvement {
	return Improvement{
		Category:      cat,
		Criterion:     r.Criterion,
		TargetSection: loc.Label(m),
		Description:   desc,
		Priority:      PriorityMedium,
		Metadata: Metadata{
			Current: r.Observed,
			Target:  r.Saturation,
			Missing: append([]string(nil), r.MissingTerms...),
			Marker:  m,
		},
	}
}

func onlyErrorTerms(loc document.Locale, missing []string) bool {
	if len(missing) == 0 {
		return false
	}
	errs := map[string]bool{}
	for _, t := range loc.Terms(document.VocabErrors) {
		errs[t] = true
	}
	for _, t := range missing {
		if !errs[t] {
			return false
		}
	}
	return true
}

// orderIDs puts unreferenced identifiers first, followed by the rest.
func orderIDs(unreferenced, all []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, group := range [][]string{unreferenced, all} {
		for _, id := range group {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func join(lang document.Language, items []string) string {
	if lang == document.LanguageZH {
		return strings.Join(items, "、")
	}
	return strings.Join(items, ", ")
}

type descKey int

const (
	descSection descKey = iota
	descCriteria
	descStories
	descEdgeCases
	descNFR
	descTraceability
	descProperties
	descDiagram
	descRationale
	descNFRDesign
	descErrorHandling
	descComponents
)

var descriptions = map[document.Language]map[descKey]string{
	document.LanguageEN: {
		descSection:       "Add missing section: %s",
		descCriteria:      "Add EARS-format acceptance criteria (current %d, target %d)",
		descStories:       "Add user stories in role/goal/benefit form (current %d, target %d)",
		descEdgeCases:     "Add acceptance criteria for edge cases (current %d, target %d)",
		descNFR:           "Cover missing non-functional requirements: %s",
		descTraceability:  "Reference requirements from design elements (current %d, target %d)",
		descProperties:    "Add correctness properties that validate requirements (current %d, target %d)",
		descDiagram:       "Add architecture diagrams (current %d, target %d)",
		descRationale:     "Explain technology choices: %s",
		descNFRDesign:     "Describe non-functional design: %s",
		descErrorHandling: "Describe error handling and fault tolerance: %s",
		descComponents:    "Detail component interfaces and data models (current %d, target %d)",
	},
	document.LanguageZH: {
		descSection:       "补充缺失章节: %s",
		descCriteria:      "补充 EARS 格式验收标准 (当前 %d，目标 %d)",
		descStories:       "补充 作为/我希望/以便 格式的用户故事 (当前 %d，目标 %d)",
		descEdgeCases:     "补充边界情况验收标准 (当前 %d，目标 %d)",
		descNFR:           "补充缺失的非功能需求: %s",
		descTraceability:  "在设计元素中引用需求 (当前 %d，目标 %d)",
		descProperties:    "补充验证需求的正确性属性 (当前 %d，目标 %d)",
		descDiagram:       "补充架构图 (当前 %d，目标 %d)",
		descRationale:     "说明技术选型: %s",
		descNFRDesign:     "补充非功能设计: %s",
		descErrorHandling: "补充容错与错误处理设计: %s",
		descComponents:    "补充组件接口与数据结构说明 (当前 %d，目标 %d)",
	},
}

func describe(lang document.Language, key descKey, args ...any) string {
	return fmt.Sprintf(descriptions[lang][key], args...)
}

type labelKey int

const (
	labelAcceptance labelKey = iota
	labelStories
)

var targetLabels = map[document.Language]map[labelKey]string{
	document.LanguageEN: {labelAcceptance: "Acceptance Criteria", labelStories: "User Stories"},
	document.LanguageZH: {labelAcceptance: "验收标准", labelStories: "用户故事"},
}

func targetLabel(lang document.Language, key labelKey) string {
	return targetLabels[lang][key]
}

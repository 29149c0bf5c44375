package improvement

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

func find(imps []Improvement, c quality.Criterion) []Improvement {
	var out []Improvement
	for _, i := range imps {
		if i.Criterion == c {
			out = append(out, i)
		}
	}
	return out
}

func TestIdentifyEmptyRequirements(t *testing.T) {
	doc := "plain english text with no structure at all"
	a := quality.NewScorer().ScoreRequirements(doc, document.LanguageEN)
	imps := NewIdentifier().Identify(doc, a)

	structure := find(imps, quality.CriterionStructure)
	if len(structure) != 4 {
		t.Fatalf("expected one improvement per missing heading, got %d", len(structure))
	}
	for _, c := range []quality.Criterion{quality.CriterionEARS, quality.CriterionStories, quality.CriterionAcceptance, quality.CriterionNFR, quality.CriterionConstraints} {
		if got := len(find(imps, c)); got != 1 {
			t.Errorf("criterion %s: %d improvements, want 1", c, got)
		}
	}

	ears := find(imps, quality.CriterionEARS)[0]
	if ears.Category != StrengthenCriteria || ears.Priority != PriorityHigh {
		t.Errorf("ears improvement = %+v", ears)
	}
	if ears.Metadata.Current != 0 || ears.Metadata.Target != 14 {
		t.Errorf("ears metadata = %+v", ears.Metadata)
	}
	var glossary *Improvement
	for i := range structure {
		if structure[i].Metadata.Marker == document.MarkerGlossary {
			glossary = &structure[i]
		}
	}
	if glossary == nil || glossary.Category != AddGlossaryTerm || glossary.Priority != PriorityLow {
		t.Errorf("glossary improvement = %+v", glossary)
	}
}

func TestIdentifyOrdersByPriorityStable(t *testing.T) {
	doc := "plain english text"
	a := quality.NewScorer().ScoreRequirements(doc, document.LanguageEN)
	imps := NewIdentifier().Identify(doc, a)
	for i := 1; i < len(imps); i++ {
		if imps[i-1].Priority > imps[i].Priority {
			t.Fatalf("not sorted at %d: %v then %v", i, imps[i-1], imps[i])
		}
	}
	if imps[0].TargetSection != "Introduction" {
		t.Fatalf("first improvement should be the introduction, got %v", imps[0])
	}
}

func TestIdentifySkipsSatisfiedCriteria(t *testing.T) {
	doc := "## Introduction\n## Glossary\n## Requirements\nNon-functional\nconstraint\n" +
		strings.Repeat("WHEN a THEN b\n", 14)
	a := quality.NewScorer().ScoreRequirements(doc, document.LanguageEN)
	imps := NewIdentifier().Identify(doc, a)
	for _, c := range []quality.Criterion{quality.CriterionStructure, quality.CriterionEARS, quality.CriterionConstraints} {
		if got := find(imps, c); len(got) != 0 {
			t.Errorf("satisfied criterion %s produced %v", c, got)
		}
	}
}

func TestIdentifyReturnsEmptyForSaturatedDocument(t *testing.T) {
	doc := "## 1. 概述\n## 2. 用户故事\n" + strings.Repeat("作为用户，我希望登录，以便访问\n", 7) +
		"## 3. 功能需求\n" + strings.Repeat("**验收标准**:\n", 5) + strings.Repeat("WHEN 提交 THEN 保存\n", 10) +
		"## 4. 非功能需求\n性能 安全 可用性 可维护性 兼容性\n约束条件\n"
	a := quality.NewScorer().ScoreRequirements(doc, "")
	if imps := NewIdentifier().Identify(doc, a); len(imps) != 0 {
		t.Fatalf("expected no improvements, got %v", imps)
	}
}

func TestIdentifyDesignCategories(t *testing.T) {
	req := "### Requirement 1\n\n1. WHEN a THEN b\n"
	doc := "## Overview\n\n## Architecture\n\n## Components\n\n## API\n\nperformance security scalability monitoring\n\n## Correctness Properties\n"
	a := quality.NewScorer().ScoreDesign(doc, req, document.LanguageEN)
	imps := NewIdentifier().Identify(doc, a)

	trace := find(imps, quality.CriterionTraceability)
	if len(trace) != 1 || trace[0].Category != AddProperties {
		t.Fatalf("expected add-properties when a properties section exists, got %v", trace)
	}
	if got := trace[0].Metadata.RequirementIDs; len(got) != 1 || got[0] != "1.1" {
		t.Errorf("requirement ids = %v", got)
	}
	nfr := find(imps, quality.CriterionNFRDesign)
	if len(nfr) != 1 || nfr[0].Category != AddErrorHandling {
		t.Fatalf("expected add-error-handling when only error terms are missing, got %v", nfr)
	}
	if d := find(imps, quality.CriterionDiagrams); len(d) != 1 || d[0].Category != AddDiagram {
		t.Fatalf("diagram improvement = %v", d)
	}
}

func TestIdentifyDensityPriority(t *testing.T) {
	tests := []struct {
		name      string
		design    bool
		doc       string
		criterion quality.Criterion
		observed  int
		goal      int
		want      Priority
	}{
		{"no criteria", false, "plain", quality.CriterionEARS, 0, 5, PriorityHigh},
		{"below half of target", false, strings.Repeat("WHEN a THEN b\n", 2), quality.CriterionEARS, 2, 5, PriorityHigh},
		{"half of target", false, strings.Repeat("WHEN a THEN b\n", 3), quality.CriterionEARS, 3, 5, PriorityMedium},
		{"no diagram", true, "## Overview\n", quality.CriterionDiagrams, 0, 1, PriorityHigh},
		{"one diagram", true, "## Overview\n```mermaid\ngraph TD\n```\n", quality.CriterionDiagrams, 1, 1, PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a quality.Assessment
			if tt.design {
				a = quality.NewScorer().ScoreDesign(tt.doc, "", document.LanguageEN)
			} else {
				a = quality.NewScorer().ScoreRequirements(tt.doc, document.LanguageEN)
			}
			got := find(NewIdentifier().Identify(tt.doc, a), tt.criterion)
			if len(got) != 1 {
				t.Fatalf("improvements for %s = %v", tt.criterion, got)
			}
			if got[0].Priority != tt.want {
				t.Errorf("priority = %v, want %v", got[0].Priority, tt.want)
			}
			if got[0].Metadata.Current != tt.observed {
				t.Errorf("current = %d, want %d", got[0].Metadata.Current, tt.observed)
			}
			wantDesc := fmt.Sprintf("(current %d, target %d)", tt.observed, tt.goal)
			if !strings.Contains(got[0].Description, wantDesc) {
				t.Errorf("description %q does not report %s", got[0].Description, wantDesc)
			}
		})
	}
}

func TestIdentifyKeepsLocale(t *testing.T) {
	doc := "一些中文内容"
	a := quality.NewScorer().ScoreRequirements(doc, "")
	for _, imp := range NewIdentifier().Identify(doc, a) {
		if imp.Metadata.Language != document.LanguageZH {
			t.Fatalf("improvement %v rendered in %s", imp, imp.Metadata.Language)
		}
	}
}

func TestIdentifyIgnoresTasks(t *testing.T) {
	a := quality.AssessTasks("- [ ] a").Assessment()
	if imps := NewIdentifier().Identify("- [ ] a", a); imps != nil {
		t.Fatalf("tasks should never produce improvements: %v", imps)
	}
}

func TestCategoryRoundTrip(t *testing.T) {
	for _, c := range Categories() {
		parsed, err := ParseCategory(c.String())
		if err != nil || parsed != c {
			t.Fatalf("ParseCategory(%q) = %v, %v", c, parsed, err)
		}
	}
	if len(Categories()) != 11 {
		t.Fatalf("categories = %d", len(Categories()))
	}
	b, err := json.Marshal(Improvement{Category: AddDiagram, Priority: PriorityMedium})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"category":"add-diagram"`) || !strings.Contains(string(b), `"priority":"medium"`) {
		t.Fatalf("json = %s", b)
	}
}

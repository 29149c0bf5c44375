package mutation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/improvement"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

func TestEveryCategoryHasStrategy(t *testing.T) {
	m := NewMutator()
	for _, c := range improvement.Categories() {
		_, err := m.strategy(c)
		assert.NoError(t, err, c.String())
	}
}

func TestApplyUnknownCategoryFails(t *testing.T) {
	res := NewMutator().Apply("text\n", []improvement.Improvement{{Category: improvement.Category(99)}}, document.LanguageEN, "")
	require.Len(t, res.Failed, 1)
	assert.True(t, errors.Is(res.Failed[0].Err, improvement.ErrUnknownCategory))
	assert.Equal(t, "text\n", res.Content)
}

func TestApplySkipsExistingSection(t *testing.T) {
	doc := "# Spec\n\n## Glossary\n\n- **A**: a thing\n"
	imp := improvement.Improvement{Category: improvement.AddGlossaryTerm, Criterion: quality.CriterionStructure, Metadata: improvement.Metadata{Marker: document.MarkerGlossary}}
	res := NewMutator().Apply(doc, []improvement.Improvement{imp}, document.LanguageEN, "")
	assert.Equal(t, doc, res.Content)
	assert.Len(t, res.Skipped, 1)
	assert.Empty(t, res.Applied)
}

func TestApplyContinuesAfterFailure(t *testing.T) {
	tmpl := DefaultTemplates()
	delete(tmpl.Sections[document.LanguageEN], document.MarkerGlossary)
	imps := []improvement.Improvement{
		{Category: improvement.AddGlossaryTerm, Metadata: improvement.Metadata{Marker: document.MarkerGlossary}},
		{Category: improvement.AddSection, Metadata: improvement.Metadata{Marker: document.MarkerConstraints}},
	}
	res := NewMutator(WithTemplates(tmpl)).Apply("# Spec\n", imps, document.LanguageEN, "")
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed[0].Err, ErrTemplateMissing)
	require.Len(t, res.Applied, 1)
	assert.Contains(t, res.Content, "## Constraints")
	assert.Contains(t, res.Report, "- Failed: 1 improvements")
}

func TestApplyRejectsLocaleMismatch(t *testing.T) {
	imp := improvement.Improvement{Category: improvement.AddSection, Metadata: improvement.Metadata{Marker: document.MarkerConstraints, Language: document.LanguageZH}}
	res := NewMutator().Apply("# Spec\n", []improvement.Improvement{imp}, document.LanguageEN, "")
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed[0].Err, ErrLocaleMismatch)
}

func TestStrengthenCriteriaContinuesList(t *testing.T) {
	doc := strings.Join([]string{
		"## Requirements",
		"",
		"### Requirement 1",
		"",
		"#### Acceptance Criteria",
		"",
		"1. WHEN a user logs in THEN the system SHALL greet them",
		"2. WHEN x happens THEN y follows",
		"",
		"## Other",
		"",
	}, "\n")
	imp := improvement.Improvement{Category: improvement.StrengthenCriteria, Criterion: quality.CriterionEARS, Metadata: improvement.Metadata{Current: 2, Target: 14}}
	res := NewMutator().Apply(doc, []improvement.Improvement{imp}, document.LanguageEN, "")

	require.Len(t, res.Applied, 1)
	assert.Contains(t, res.Content, "2. WHEN x happens THEN y follows\n3. WHEN a user submits a valid request THEN")
	assert.Equal(t, 7, document.LocaleFor(document.LanguageEN).CountIdiom(res.Content, document.IdiomCriterion))
	assert.True(t, document.Preserves(doc, res.Content))
	assert.Less(t, strings.Index(res.Content, "7. WHEN"), strings.Index(res.Content, "## Other"))
}

func TestAddNonFunctionalAugmentsSection(t *testing.T) {
	doc := "## Non-functional Requirements\n\n### Performance\n\n- fast\n\n## Constraints\n\n- none\n"
	imp := improvement.Improvement{Category: improvement.AddNonFunctionalRequirement, Criterion: quality.CriterionNFR, Metadata: improvement.Metadata{Marker: document.MarkerNonFunctional}}
	res := NewMutator().Apply(doc, []improvement.Improvement{imp}, document.LanguageEN, "")

	require.Len(t, res.Applied, 1)
	loc := document.LocaleFor(document.LanguageEN)
	assert.Empty(t, loc.MissingTerms(res.Content, document.VocabNFR))
	assert.Less(t, strings.Index(res.Content, "### Security"), strings.Index(res.Content, "## Constraints"))
	assert.Equal(t, 1, strings.Count(res.Content, "### Performance"))
}

func TestAddTraceabilityUsesCompanionIDs(t *testing.T) {
	design := "## Overview\n\nText.\n\n## Components\n\n### Auth Service\n\nHandles login.\n"
	companion := "## Requirements\n\n### Requirement 1\n\n1. WHEN a THEN b\n2. WHEN c THEN d\n"
	imp := improvement.Improvement{Category: improvement.AddTraceability, Criterion: quality.CriterionTraceability, Metadata: improvement.Metadata{Target: 14, Marker: document.MarkerTraceability}}
	m := NewMutator()
	res := m.Apply(design, []improvement.Improvement{imp}, document.LanguageEN, companion)

	require.Len(t, res.Applied, 1)
	assert.Contains(t, res.Content, "## Requirements Traceability")
	assert.Contains(t, res.Content, "- Requirement 1.1 is addressed by Auth Service")
	assert.Contains(t, res.Content, "- Requirement 1.2 is addressed by Core Component")
	assert.Equal(t, 1, strings.Count(res.Content, "- Requirement 1.1 is addressed by Auth Service"))

	// Two requirements still reach the target by pairing with more elements.
	text := res.Content
	for i := 0; i < 5; i++ {
		again := m.Apply(text, []improvement.Improvement{imp}, document.LanguageEN, companion)
		if len(again.Skipped) == 1 {
			break
		}
		require.Len(t, again.Applied, 1)
		require.True(t, document.Preserves(text, again.Content))
		text = again.Content
	}
	assert.GreaterOrEqual(t, document.LocaleFor(document.LanguageEN).CountIdiom(text, document.IdiomTraceRef), 14)
	again := m.Apply(text, []improvement.Improvement{imp}, document.LanguageEN, companion)
	assert.Len(t, again.Skipped, 1)
}

func TestAddPropertiesMalformedTemplateFailsOnlyThatImprovement(t *testing.T) {
	tmpl := DefaultTemplates()
	tmpl.Examples[document.LanguageEN][ExampleProperty] = []string{"- Property: %s validates %s"}
	doc := "## Overview\n\nText.\n\n## Correctness Properties\n\n- none yet\n"
	imps := []improvement.Improvement{
		{Category: improvement.AddProperties, Criterion: quality.CriterionTraceability, Metadata: improvement.Metadata{Target: 14, Marker: document.MarkerProperties}},
		{Category: improvement.AddSection, Metadata: improvement.Metadata{Marker: document.MarkerConstraints}},
	}
	var res Result
	require.NotPanics(t, func() {
		res = NewMutator(WithTemplates(tmpl)).Apply(doc, imps, document.LanguageEN, "")
	})
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed[0].Err, ErrTemplateMalformed)
	require.Len(t, res.Applied, 1)
	assert.Contains(t, res.Content, "## Constraints")
}

func TestAddDiagramTargetsArchitecture(t *testing.T) {
	doc := "## Architecture\n\nLayered.\n\n## Components\n\n- a\n"
	imp := improvement.Improvement{Category: improvement.AddDiagram, Criterion: quality.CriterionDiagrams, Metadata: improvement.Metadata{Target: 4, Marker: document.MarkerArchitecture}}
	m := NewMutator()
	res := m.Apply(doc, []improvement.Improvement{imp}, document.LanguageEN, "")

	require.Len(t, res.Applied, 1)
	assert.Less(t, strings.Index(res.Content, "### Architecture Diagram"), strings.Index(res.Content, "## Components"))
	assert.GreaterOrEqual(t, document.LocaleFor(document.LanguageEN).CountIdiom(res.Content, document.IdiomDiagram), 4)

	again := m.Apply(res.Content, []improvement.Improvement{imp}, document.LanguageEN, "")
	assert.Equal(t, res.Content, again.Content)
}

func TestRepeatedCyclesConverge(t *testing.T) {
	tests := []struct {
		name      string
		kind      document.Kind
		lang      document.Language
		doc       string
		companion string
	}{
		{"requirements en", document.KindRequirements, document.LanguageEN, "# Requirements Document\n\nplain english text\n", ""},
		{"requirements zh", document.KindRequirements, document.LanguageZH, "# 需求文档\n\n这是一个没有结构的中文需求文档。\n", ""},
		{"design en", document.KindDesign, document.LanguageEN, "# Design Document\n\nplain english text\n", ""},
		{"design zh", document.KindDesign, document.LanguageZH, "# 设计文档\n\n这是一个没有结构的中文设计文档。\n", ""},
		{"design en with small companion", document.KindDesign, document.LanguageEN, "# Design Document\n\nplain english text\n",
			"## Requirements\n\n### Requirement 1\n\n1. WHEN a THEN b\n2. WHEN c THEN d\n"},
		{"design en with single requirement", document.KindDesign, document.LanguageEN, "# Design Document\n\nplain english text\n",
			"## Requirements\n\n### Requirement 1\n\n1. WHEN a THEN b\n"},
	}
	scorer := quality.NewScorer()
	ident := improvement.NewIdentifier()
	m := NewMutator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := tt.doc
			opts := quality.ScoreOptions{Language: tt.lang, Companion: tt.companion}
			initial := scorer.Score(tt.kind, text, opts).Score
			for i := 0; i < 6; i++ {
				a := scorer.Score(tt.kind, text, opts)
				imps := ident.Identify(text, a)
				if len(imps) == 0 {
					break
				}
				res := m.Apply(text, imps, tt.lang, tt.companion)
				require.Empty(t, res.Failed)
				require.True(t, document.Preserves(text, res.Content))
				text = res.Content
			}
			final := scorer.Score(tt.kind, text, opts).Score
			assert.Greater(t, final, initial)
			assert.GreaterOrEqual(t, final, 9.0)
		})
	}
}

func TestReportLocalized(t *testing.T) {
	imp := improvement.Improvement{Category: improvement.AddSection, Description: "补充缺失章节: 约束条件", Metadata: improvement.Metadata{Marker: document.MarkerConstraints}}
	res := NewMutator().Apply("# 需求文档\n", []improvement.Improvement{imp}, document.LanguageZH, "")

	assert.Contains(t, res.Report, "### 修改报告")
	assert.Contains(t, res.Report, "- 成功应用: 1 项改进")
	assert.Contains(t, res.Report, "#### 已应用的改进:")
	assert.NotContains(t, res.Report, "Successfully applied")
	assert.Contains(t, res.Content, "## 5. 约束条件")
}

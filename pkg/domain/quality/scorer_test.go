package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

func repeatLines(line string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func fullRequirementsEN() string {
	return "# Spec\n\n## Introduction\n\nIntro.\n\n## Glossary\n\n- Term\n\n## Requirements\n\n" +
		repeatLines("- **User Story:** As a user, I want things, so that value", 8) +
		repeatLines("#### Acceptance Criteria", 7) +
		repeatLines("1. WHEN x THEN the system SHALL y", 14) +
		"\n## Non-functional Requirements\n\nperformance security usability maintainability compatibility scalability\n\nOne constraint applies.\n"
}

func TestScoreRequirementsEmptyEnglish(t *testing.T) {
	s := NewScorer()
	a := s.ScoreRequirements("Hello world this is plain english text", "")

	assert.Equal(t, document.LanguageEN, a.Language)
	assert.Equal(t, 0.0, a.Score)
	assert.Equal(t, []string{"Introduction", "Glossary", "Requirements", "Non-functional Requirements", "Constraints"}, a.MissingSections)
	assert.NotEmpty(t, a.Issues)
}

func TestScoreRequirementsSaturated(t *testing.T) {
	s := NewScorer()
	a := s.ScoreRequirements(fullRequirementsEN(), "")

	require.Equal(t, document.LanguageEN, a.Language)
	assert.InDelta(t, 9.9, a.Score, 1e-9)
	assert.Empty(t, a.MissingSections)
	for _, r := range a.Criteria {
		assert.Truef(t, r.Satisfied, "criterion %s should be satisfied: %+v", r.Criterion, r)
	}
	assert.InDelta(t, 10.0, a.CriterionScores[CriterionEARS], 1e-9)
	assert.InDelta(t, 9.0, a.CriterionScores[CriterionNFR], 1e-9)
}

func TestScoreIsIdempotent(t *testing.T) {
	s := NewScorer()
	doc := fullRequirementsEN()
	assert.Equal(t, s.ScoreRequirements(doc, ""), s.ScoreRequirements(doc, ""))
}

func TestSaturatingSubScore(t *testing.T) {
	s := NewScorer()
	a := s.ScoreRequirements("## Requirements\n"+repeatLines("WHEN a THEN b", 3), document.LanguageEN)

	r, ok := a.Result(CriterionEARS)
	require.True(t, ok)
	assert.Equal(t, 3, r.Observed)
	assert.Equal(t, 14, r.Saturation)
	assert.InDelta(t, 0.45, r.Contribution, 1e-9)
	assert.False(t, r.Satisfied)
	assert.Contains(t, a.IncompleteSections, Describe(CriterionEARS, document.LanguageEN))
}

func TestScoreRequirementsChinese(t *testing.T) {
	doc := "## 1. 概述\n\n## 2. 用户故事\n\n" +
		repeatLines("作为用户，我希望登录，以便访问数据", 7) +
		"\n## 3. 功能需求\n\n" +
		repeatLines("**验收标准**:", 5) +
		repeatLines("1. WHEN 用户提交 THEN 系统 SHALL 保存", 10) +
		"\n## 4. 非功能需求\n\n性能 安全 可用性 可维护性 兼容性\n\n## 约束条件\n"
	a := NewScorer().ScoreRequirements(doc, "")
	require.Equal(t, document.LanguageZH, a.Language)
	assert.InDelta(t, 10.0, a.Score, 1e-9)
	assert.Empty(t, a.Issues)
}

func TestLanguageOverrideIsHonoured(t *testing.T) {
	a := NewScorer().ScoreRequirements("plain english words only here", document.LanguageZH)
	assert.Equal(t, document.LanguageZH, a.Language)
	assert.Contains(t, a.MissingSections, "用户故事")
}

func TestCustomWeightsAreRenormalized(t *testing.T) {
	s := NewScorer(WithWeights(document.KindRequirements, Weights{CriterionStructure: 2.0}))
	w := s.Weights(document.KindRequirements)
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	assert.Greater(t, w[CriterionStructure], w[CriterionEARS])

	a := s.ScoreRequirements("## Introduction\n## Glossary\n## Requirements\nNon-functional\n", document.LanguageEN)
	r, _ := a.Result(CriterionStructure)
	assert.InDelta(t, r.Cap, r.Contribution, 1e-9)
	assert.InDelta(t, 10.0, r.Raw, 1e-9)
	assert.InDelta(t, r.Contribution, a.Score, 0.01)
}

func TestMergeRejectsUnknownCriterion(t *testing.T) {
	_, err := Merge(document.KindRequirements, map[string]float64{"diagrams": 0.5})
	assert.ErrorIs(t, err, ErrUnknownCriterion)

	w, err := Merge(document.KindDesign, map[string]float64{"diagrams": 0.5})
	require.NoError(t, err)
	assert.Equal(t, 0.5, w[CriterionDiagrams])
}

func TestNormalizeWithinTolerance(t *testing.T) {
	w := Weights{CriterionStructure: 0.505, CriterionEARS: 0.5}
	out, changed := w.Normalize()
	assert.False(t, changed)
	assert.Equal(t, w, out)

	out, changed = Weights{CriterionStructure: 1, CriterionEARS: 1}.Normalize()
	assert.True(t, changed)
	assert.Equal(t, 0.5, out[CriterionStructure])
}

func TestScoreDesignTraceability(t *testing.T) {
	req := "## Requirements\n\n### Requirement 1\n\n1. WHEN a THEN b\n2. WHEN c THEN d\n"
	design := "## Overview\n\n## Architecture\n\n## Components\n\n- Store implements Requirement 1.1\n\n## Interfaces\n"
	a := NewScorer().ScoreDesign(design, req, "")

	assert.Equal(t, []string{"1.1", "1.2"}, a.RequirementIDs)
	assert.Equal(t, []string{"1.2"}, a.UnreferencedRequirements)
	r, _ := a.Result(CriterionTraceability)
	assert.Equal(t, 1, r.Observed)
	assert.Contains(t, a.MissingSections, "Architecture/Design Diagrams")
}

func TestScoreDispatchesOnKind(t *testing.T) {
	s := NewScorer()
	assert.Equal(t, document.KindDesign, s.Score(document.KindDesign, "## Overview", ScoreOptions{}).Kind)
	assert.Equal(t, document.KindTasks, s.Score(document.KindTasks, "- [x] done", ScoreOptions{}).Kind)
	assert.Equal(t, document.KindRequirements, s.Score(document.KindRequirements, "x", ScoreOptions{}).Kind)
}

func TestAppendingTextNeverLowersCriteria(t *testing.T) {
	s := NewScorer()
	base := "## Introduction\n\nWHEN a THEN b\n"
	additions := []string{
		"## Glossary\n",
		"As a user, I want x, so that y\n",
		"#### Acceptance Criteria\n",
		"performance\n",
	}
	prev := s.ScoreRequirements(base, document.LanguageEN)
	doc := base
	for _, add := range additions {
		doc += add
		next := s.ScoreRequirements(doc, document.LanguageEN)
		for c, v := range prev.CriterionScores {
			assert.GreaterOrEqualf(t, next.CriterionScores[c], v, "criterion %s dropped after %q", c, add)
		}
		prev = next
	}
}

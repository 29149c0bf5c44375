package application

import (
	"context"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

// ScoreReport is the read-only view of a document's quality shared by the
// CLI, MCP and HTTP surfaces.
type ScoreReport struct {
	Path                     string            `json:"path"`
	Kind                     document.Kind     `json:"kind"`
	Language                 document.Language `json:"language"`
	Score                    float64           `json:"score"`
	Threshold                float64           `json:"threshold"`
	Passed                   bool              `json:"passed"`
	Breakdown                quality.Breakdown `json:"breakdown"`
	IncompleteSections       []string          `json:"incomplete_sections,omitempty"`
	Issues                   []string          `json:"issues,omitempty"`
	UnreferencedRequirements []string          `json:"unreferenced_requirements,omitempty"`
}

// Report assesses the document and compares it with its configured threshold.
func (s *EnhancementService) Report(ctx context.Context, req EnhanceRequest) (ScoreReport, error) {
	t, err := s.resolve(req.Path, req.Kind, req.CompanionPath)
	if err != nil {
		return ScoreReport{}, err
	}
	a, err := s.Assess(ctx, EnhanceRequest{Path: t.path, Kind: t.kind, CompanionPath: req.CompanionPath, Language: req.Language})
	if err != nil {
		return ScoreReport{}, err
	}
	threshold := t.settings.Convergence.Threshold
	return ScoreReport{
		Path:                     t.path,
		Kind:                     t.kind,
		Language:                 a.Language,
		Score:                    a.Score,
		Threshold:                threshold,
		Passed:                   a.Meets(threshold),
		Breakdown:                quality.NewBreakdown(a),
		IncompleteSections:       a.IncompleteSections,
		Issues:                   a.Issues,
		UnreferencedRequirements: a.UnreferencedRequirements,
	}, nil
}

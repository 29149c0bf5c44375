package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/specgate/pkg/domain/convergence"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

// Exit codes of a gate invocation.
const (
	ExitPass        = 0
	ExitFail        = 1
	ExitOperational = 2
)

// GateRequest names the document checked by a quality gate.
type GateRequest struct {
	Path          string
	Kind          document.Kind
	CompanionPath string
	Language      document.Language
	// NoEnhance scores the document without modifying it.
	NoEnhance bool
	DryRun    bool
}

// GateOutcome is the verdict of a gate. Tasks is set for tasks documents,
// Result for the others.
type GateOutcome struct {
	Kind      document.Kind            `json:"kind"`
	Passed    bool                     `json:"passed"`
	ExitCode  int                      `json:"exit_code"`
	Threshold float64                  `json:"threshold"`
	Score     float64                  `json:"score"`
	Result    *convergence.Result      `json:"result,omitempty"`
	Tasks     *quality.TasksAssessment `json:"tasks,omitempty"`
}

// GateService enforces quality thresholds, enhancing documents first unless
// asked not to.
type GateService struct {
	enhancer *EnhancementService
}

func NewGateService(enhancer *EnhancementService) *GateService {
	return &GateService{enhancer: enhancer}
}

// Check runs the gate. The error is non-nil only for operational failures;
// a fatal read or write during the run is reported as an error as well so
// callers map it to ExitOperational.
func (g *GateService) Check(ctx context.Context, req GateRequest) (GateOutcome, error) {
	kind := req.Kind
	if kind == "" {
		k, ok := document.InferKind(req.Path)
		if !ok {
			return GateOutcome{ExitCode: ExitOperational}, fmt.Errorf("%w: %s", ErrUnknownKind, req.Path)
		}
		kind = k
	}

	if kind == document.KindTasks {
		ta, settings, err := g.enhancer.AssessTasks(ctx, req.Path)
		if err != nil {
			return GateOutcome{Kind: kind, ExitCode: ExitOperational}, err
		}
		threshold := settings.Convergence.Threshold
		out := GateOutcome{
			Kind:      kind,
			Threshold: threshold,
			Score:     ta.Score,
			Passed:    ta.Score >= threshold,
			Tasks:     &ta,
		}
		out.ExitCode = exitCode(out.Passed)
		return out, nil
	}

	ereq := EnhanceRequest{
		Path:          req.Path,
		Kind:          kind,
		CompanionPath: req.CompanionPath,
		Language:      req.Language,
		DryRun:        req.DryRun,
	}
	var (
		res convergence.Result
		err error
	)
	if req.NoEnhance {
		res, err = g.enhancer.Validate(ctx, ereq)
	} else {
		res, err = g.enhancer.Enhance(ctx, ereq)
	}
	if err != nil {
		return GateOutcome{Kind: kind, ExitCode: ExitOperational}, err
	}
	out := GateOutcome{
		Kind:      kind,
		Threshold: res.Threshold,
		Score:     res.FinalScore,
		Passed:    res.Passed(),
		Result:    &res,
	}
	if res.StopReason.Fatal() {
		out.ExitCode = ExitOperational
		return out, fmt.Errorf("%s: %w", res.StopReason, res.Err)
	}
	out.ExitCode = exitCode(out.Passed)
	return out, nil
}

func exitCode(passed bool) int {
	if passed {
		return ExitPass
	}
	return ExitFail
}

package convergence

import (
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/improvement"
	"github.com/felixgeelhaar/specgate/pkg/domain/mutation"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

// StopReason tags why a run ended.
type StopReason string

const (
	ReasonThreshold      StopReason = "threshold-reached"
	ReasonPlateau        StopReason = "plateau"
	ReasonNoImprovements StopReason = "no-improvements"
	ReasonMaxIterations  StopReason = "max-iterations"
	ReasonValidationOnly StopReason = "validation-only"
	ReasonReadError      StopReason = "read-error"
	ReasonWriteError     StopReason = "write-error"
	ReasonCanceled       StopReason = "canceled"
	ReasonInternal       StopReason = "internal-error"
)

// Fatal reports whether the reason denotes a failed invocation rather than
// a normal stopping point.
func (r StopReason) Fatal() bool {
	switch r {
	case ReasonReadError, ReasonWriteError, ReasonInternal:
		return true
	}
	return false
}

// Subject identifies the document a run operates on.
type Subject struct {
	Path string
	Kind document.Kind
	// Companion is the text of the requirements document a design is
	// traced against.
	Companion string
	// Language overrides detection when set.
	Language document.Language
}

// Result is the complete record of one run.
type Result struct {
	Path            string                    `json:"path"`
	Kind            document.Kind             `json:"kind"`
	Language        document.Language         `json:"language"`
	Threshold       float64                   `json:"threshold"`
	InitialScore    float64                   `json:"initial_score"`
	FinalScore      float64                   `json:"final_score"`
	Iterations      int                       `json:"iterations"`
	ScoreHistory    []float64                 `json:"score_history"`
	Applied         []improvement.Improvement `json:"applied"`
	Failed          []mutation.Failure        `json:"failed"`
	StopReason      StopReason                `json:"stop_reason"`
	Err             error                     `json:"-"`
	Changed         bool                      `json:"changed"`
	Content         string                    `json:"-"`
	Reports         []string                  `json:"reports,omitempty"`
	FinalAssessment quality.Assessment        `json:"-"`
}

// Passed reports whether the run ended at or above its threshold.
func (r Result) Passed() bool {
	return r.Err == nil && quality.MeetsThreshold(r.FinalScore, r.Threshold)
}

// ErrorMessage returns the fatal cause as text, or "".
func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

package quality

import (
	"fmt"
	"math"
	"regexp"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

// TaskStatus is the checklist state of one task item.
type TaskStatus string

const (
	TaskDone       TaskStatus = "done"
	TaskInProgress TaskStatus = "in-progress"
	TaskNotStarted TaskStatus = "not-started"
	TaskQueued     TaskStatus = "queued"
)

var taskItem = regexp.MustCompile(`- \[([x\- ~])\] .+`)

// TasksAssessment summarizes a checklist-style tasks document.
type TasksAssessment struct {
	Total      int      `json:"total"`
	Done       int      `json:"done"`
	InProgress int      `json:"in_progress"`
	NotStarted int      `json:"not_started"`
	Queued     int      `json:"queued"`
	Score      float64  `json:"score"`
	Issues     []string `json:"issues,omitempty"`
}

// AssessTasks scores a tasks document as done/total x 10. It is read-only:
// tasks documents are gated, never enhanced.
func AssessTasks(text string) TasksAssessment {
	var ta TasksAssessment
	for _, m := range taskItem.FindAllStringSubmatch(text, -1) {
		switch statusOf(m[1]) {
		case TaskDone:
			ta.Done++
		case TaskInProgress:
			ta.InProgress++
		case TaskNotStarted:
			ta.NotStarted++
		case TaskQueued:
			ta.Queued++
		}
		ta.Total++
	}
	if ta.Total == 0 {
		ta.Issues = append(ta.Issues, message(document.LanguageEN, msgNoTasks))
		return ta
	}
	rate := float64(ta.Done) / float64(ta.Total) * 100
	ta.Score = clampScore(rate / 10)
	if rate < 50 {
		ta.Issues = append(ta.Issues, fmt.Sprintf(message(document.LanguageEN, msgLowCompletion), rate))
	}
	return ta
}

func statusOf(marker string) TaskStatus {
	switch marker {
	case "x":
		return TaskDone
	case "-":
		return TaskInProgress
	case "~":
		return TaskQueued
	}
	return TaskNotStarted
}

// CompletionRate returns the done percentage in [0, 100].
func (ta TasksAssessment) CompletionRate() float64 {
	if ta.Total == 0 {
		return 0
	}
	return math.Round(float64(ta.Done)/float64(ta.Total)*1000) / 10
}

// Assessment converts the checklist summary into the common shape used by
// gates and reports.
func (ta TasksAssessment) Assessment() Assessment {
	return Assessment{
		Kind:            document.KindTasks,
		Language:        document.LanguageEN,
		Score:           ta.Score,
		CriterionScores: map[Criterion]float64{CriterionCompletion: ta.Score},
		Criteria: []CriterionResult{{
			Criterion:    CriterionCompletion,
			Observed:     ta.Done,
			Saturation:   ta.Total,
			Raw:          ta.Score,
			Weight:       1,
			Cap:          10,
			Contribution: ta.Score,
			Satisfied:    ta.Total > 0 && ta.Done == ta.Total,
		}},
		Issues: append([]string(nil), ta.Issues...),
	}
}

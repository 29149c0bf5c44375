package quality

import "testing"

func TestAssessTasks(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		total     int
		done      int
		score     float64
		hasIssues bool
	}{
		{"empty", "# Tasks\n", 0, 0, 0, true},
		{"all done", "- [x] a\n- [x] b\n", 2, 2, 10, false},
		{"mixed", "- [x] a\n- [ ] b\n- [-] c\n- [~] d\n", 4, 1, 2.5, true},
		{"nested items count", "- [x] 1. top\n  - [x] 1.1 sub\n  - [ ] 1.2 sub\n", 3, 2, 6.67, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := AssessTasks(tt.text)
			if ta.Total != tt.total || ta.Done != tt.done {
				t.Fatalf("total/done = %d/%d, want %d/%d", ta.Total, ta.Done, tt.total, tt.done)
			}
			if ta.Score != tt.score {
				t.Fatalf("score = %v, want %v", ta.Score, tt.score)
			}
			if (len(ta.Issues) > 0) != tt.hasIssues {
				t.Fatalf("issues = %v", ta.Issues)
			}
		})
	}
}

func TestTasksAssessmentConversion(t *testing.T) {
	a := AssessTasks("- [x] a\n- [~] b\n").Assessment()
	if a.Score != 5 || a.CriterionScores[CriterionCompletion] != 5 {
		t.Fatalf("unexpected assessment %+v", a)
	}
	if got := AssessTasks("- [x] a\n- [~] b\n- [~] c\n").CompletionRate(); got != 33.3 {
		t.Fatalf("completion rate = %v", got)
	}
}

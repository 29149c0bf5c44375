package storage

import (
	"sort"
	"sync"
	"time"
)

// RunRecord is the persisted summary of one enhancement run.
type RunRecord struct {
	ID           string        `json:"id"`
	Path         string        `json:"path"`
	Kind         string        `json:"kind"`
	Language     string        `json:"language"`
	InitialScore float64       `json:"initial_score"`
	FinalScore   float64       `json:"final_score"`
	Iterations   int           `json:"iterations"`
	StopReason   string        `json:"stop_reason"`
	Applied      int           `json:"applied"`
	Failed       int           `json:"failed"`
	History      []float64     `json:"score_history"`
	Changed      bool          `json:"changed"`
	DryRun       bool          `json:"dry_run"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// RunHistory records and lists enhancement runs.
type RunHistory interface {
	RecordRun(r RunRecord) error
	// ListRuns returns runs for path (all when empty), newest first. A
	// non-positive limit returns everything.
	ListRuns(path string, limit int) ([]RunRecord, error)
}

// MemoryHistory is an in-process RunHistory.
type MemoryHistory struct {
	mu   sync.Mutex
	runs []RunRecord
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (h *MemoryHistory) RecordRun(r RunRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = append(h.runs, r)
	return nil
}

func (h *MemoryHistory) ListRuns(path string, limit int) ([]RunRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []RunRecord
	for _, r := range h.runs {
		if path == "" || r.Path == path {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

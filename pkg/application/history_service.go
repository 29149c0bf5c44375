package application

import "github.com/felixgeelhaar/specgate/pkg/storage"

// HistoryService reads recorded enhancement runs.
type HistoryService struct {
	docs    Documents
	history storage.RunHistory
}

func NewHistoryService(docs Documents, history storage.RunHistory) *HistoryService {
	return &HistoryService{docs: docs, history: history}
}

// Runs lists runs for path (all when empty), newest first.
func (s *HistoryService) Runs(path string, limit int) ([]storage.RunRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	if path != "" {
		full, err := s.docs.ResolvePath(path)
		if err != nil {
			return nil, err
		}
		path = full
	}
	return s.history.ListRuns(path, limit)
}

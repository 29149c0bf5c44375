package application

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/specgate/pkg/storage"
)

// BackupService exposes snapshot management to the outer surfaces.
type BackupService struct {
	docs    Documents
	backups Backups
	locks   *PathLocks
	logger  *zap.Logger
}

// NewBackupService shares locks with the enhancement service so a restore
// never races an enhancement of the same document.
func NewBackupService(docs Documents, backups Backups, locks *PathLocks, logger *zap.Logger) *BackupService {
	if locks == nil {
		locks = NewPathLocks()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{docs: docs, backups: backups, locks: locks, logger: logger}
}

// List returns the snapshots of path, or all snapshots when path is empty.
func (s *BackupService) List(path string) ([]storage.Snapshot, error) {
	if path == "" {
		return s.backups.List("")
	}
	full, err := s.docs.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	return s.backups.List(full)
}

// Restore copies the snapshot back over its original document.
func (s *BackupService) Restore(id string) (storage.Snapshot, error) {
	snap, err := s.find(id)
	if err != nil {
		return storage.Snapshot{}, err
	}
	release, err := s.locks.Acquire(snap.OriginalPath)
	if err != nil {
		return storage.Snapshot{}, err
	}
	defer release()
	restored, err := s.backups.Restore(id)
	if err != nil {
		return storage.Snapshot{}, err
	}
	s.logger.Info("snapshot restored", zap.String("backup_id", id), zap.String("path", restored.OriginalPath))
	return restored, nil
}

func (s *BackupService) Discard(id string) error {
	if err := s.backups.Discard(id); err != nil {
		return err
	}
	s.logger.Info("snapshot discarded", zap.String("backup_id", id))
	return nil
}

// Prune removes snapshots older than retention.
func (s *BackupService) Prune(retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("retention must be positive, got %s", retention)
	}
	n, err := s.backups.Prune(retention)
	if err != nil {
		return n, err
	}
	s.logger.Info("snapshots pruned", zap.Int("count", n), zap.Duration("retention", retention))
	return n, nil
}

func (s *BackupService) find(id string) (storage.Snapshot, error) {
	all, err := s.backups.List("")
	if err != nil {
		return storage.Snapshot{}, err
	}
	for _, snap := range all {
		if snap.ID == id {
			return snap, nil
		}
	}
	return storage.Snapshot{}, fmt.Errorf("%w: %s", storage.ErrBackupNotFound, id)
}

package application

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/specgate/pkg/storage"
)

// Documents is the document persistence the services need.
type Documents interface {
	Read(path string) (string, error)
	Write(path, content string) error
	ResolvePath(path string) (string, error)
}

// Backups is the snapshot lifecycle used around writes.
type Backups interface {
	Snapshot(path, reason string) (storage.Snapshot, error)
	Restore(id string) (storage.Snapshot, error)
	Discard(id string) error
	List(path string) ([]storage.Snapshot, error)
	Prune(retention time.Duration) (int, error)
}

// snapshottingStore takes a snapshot before the first write and restores it
// when the write fails.
type snapshottingStore struct {
	Documents
	backups Backups
	reason  string
	logger  *zap.Logger

	snapshot *storage.Snapshot
}

func (s *snapshottingStore) Write(path, content string) error {
	if s.snapshot == nil {
		snap, err := s.backups.Snapshot(path, s.reason)
		if err != nil {
			return fmt.Errorf("refusing to write without a backup: %w", err)
		}
		s.snapshot = &snap
		s.logger.Debug("snapshot taken", zap.String("path", path), zap.String("backup_id", snap.ID))
	}
	if err := s.Documents.Write(path, content); err != nil {
		if _, rerr := s.backups.Restore(s.snapshot.ID); rerr != nil {
			s.logger.Error("restore after failed write", zap.String("backup_id", s.snapshot.ID), zap.Error(rerr))
		} else {
			s.logger.Warn("write failed, document restored", zap.String("path", path), zap.String("backup_id", s.snapshot.ID))
		}
		return err
	}
	return nil
}

// dryRunStore keeps writes in memory.
type dryRunStore struct {
	Documents
	written map[string]string
}

func (s *dryRunStore) Write(path, content string) error {
	if s.written == nil {
		s.written = make(map[string]string)
	}
	s.written[path] = content
	return nil
}

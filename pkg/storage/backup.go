package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Snapshot is the catalog entry for one backup copy of a document.
type Snapshot struct {
	ID           string    `json:"id"`
	OriginalPath string    `json:"original_path"`
	SnapshotPath string    `json:"snapshot_path"`
	CreatedAt    time.Time `json:"created_at"`
	Reason       string    `json:"reason"`
	Size         int64     `json:"size"`
}

// Catalog persists snapshot metadata.
type Catalog interface {
	Put(s Snapshot) error
	Get(id string) (Snapshot, error)
	Delete(id string) error
	// List returns snapshots of originalPath, or all when empty, newest first.
	List(originalPath string) ([]Snapshot, error)
}

// BackupStore copies documents aside before they are modified.
type BackupStore struct {
	catalog Catalog
	now     func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewBackupStore(catalog Catalog) *BackupStore {
	if catalog == nil {
		catalog = NewMemoryCatalog()
	}
	return &BackupStore{catalog: catalog, now: time.Now}
}

// snapshotID derives the identifier from the file name and a microsecond
// timestamp. IDs issued by one store strictly increase.
func (b *BackupStore) snapshotID(path string) (string, time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.now().Truncate(time.Microsecond)
	if !t.After(b.last) {
		t = b.last.Add(time.Microsecond)
	}
	b.last = t
	id := fmt.Sprintf("%s.backup-%s_%06d", filepath.Base(path), t.Format("20060102_150405"), t.Nanosecond()/1000)
	return id, t
}

// Snapshot copies path into its backup directory and records it.
func (b *BackupStore) Snapshot(path, reason string) (Snapshot, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Snapshot{}, err
	}
	// #nosec G304 -- Path is supplied by the document store
	data, err := os.ReadFile(abs)
	if err != nil {
		return Snapshot{}, pathError("snapshot", path, err)
	}
	dir := BackupDir(abs)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(dir, 0700); err != nil {
		return Snapshot{}, pathError("snapshot", dir, err)
	}
	id, created := b.snapshotID(abs)
	s := Snapshot{
		ID:           id,
		OriginalPath: abs,
		SnapshotPath: filepath.Join(dir, id),
		CreatedAt:    created,
		Reason:       reason,
		Size:         int64(len(data)),
	}
	if err := os.WriteFile(s.SnapshotPath, data, 0600); err != nil {
		return Snapshot{}, pathError("snapshot", s.SnapshotPath, err)
	}
	if err := b.catalog.Put(s); err != nil {
		os.Remove(s.SnapshotPath)
		return Snapshot{}, fmt.Errorf("failed to record snapshot: %w", err)
	}
	return s, nil
}

// Restore writes the snapshot's content back over its original path.
func (b *BackupStore) Restore(id string) (Snapshot, error) {
	s, err := b.catalog.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	// #nosec G304 -- Path comes from the snapshot catalog
	data, err := os.ReadFile(s.SnapshotPath)
	if err != nil {
		return Snapshot{}, pathError("restore", s.SnapshotPath, err)
	}
	if err := writeAtomic(s.OriginalPath, data); err != nil {
		return Snapshot{}, pathError("restore", s.OriginalPath, err)
	}
	return s, nil
}

// Discard deletes a snapshot file and its catalog entry.
func (b *BackupStore) Discard(id string) error {
	s, err := b.catalog.Get(id)
	if err != nil {
		return err
	}
	if err := os.Remove(s.SnapshotPath); err != nil && !os.IsNotExist(err) {
		return pathError("discard", s.SnapshotPath, err)
	}
	return b.catalog.Delete(id)
}

func (b *BackupStore) List(path string) ([]Snapshot, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		path = abs
	}
	return b.catalog.List(path)
}

// Prune discards snapshots older than retention. A zero retention keeps
// everything.
func (b *BackupStore) Prune(retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, nil
	}
	all, err := b.catalog.List("")
	if err != nil {
		return 0, err
	}
	cutoff := b.now().Add(-retention)
	removed := 0
	for _, s := range all {
		if s.CreatedAt.Before(cutoff) {
			if err := b.Discard(s.ID); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

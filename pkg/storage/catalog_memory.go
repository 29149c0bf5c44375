package storage

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryCatalog keeps snapshot metadata for the life of the process.
type MemoryCatalog struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{snapshots: make(map[string]Snapshot)}
}

func (c *MemoryCatalog) Put(s Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[s.ID] = s
	return nil
}

func (c *MemoryCatalog) Get(id string) (Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.snapshots[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
	}
	return s, nil
}

func (c *MemoryCatalog) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.snapshots[id]; !ok {
		return fmt.Errorf("%w: %s", ErrBackupNotFound, id)
	}
	delete(c.snapshots, id)
	return nil
}

func (c *MemoryCatalog) List(originalPath string) ([]Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Snapshot
	for _, s := range c.snapshots {
		if originalPath == "" || s.OriginalPath == originalPath {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

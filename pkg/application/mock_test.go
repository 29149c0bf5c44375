package application

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/storage"
)

const sparseRequirements = `# Requirements Document

## Introduction

A small service.

## Non-functional Requirements

The service should be fast.
`

const tasksDoc = `# Tasks

- [x] 1. Scaffold the module
- [x] 2. Implement the scorer
- [-] 3. Implement the mutator
- [ ] 4. Write the CLI
`

// failingWrites passes reads through and rejects every write.
type failingWrites struct {
	Documents
}

func (failingWrites) Write(path, content string) error {
	return errors.New("disk full")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func settingsWith(mod func(*Settings)) Resolver {
	return ResolverFunc(func(_ string, kind document.Kind) (Settings, error) {
		s := DefaultSettings(kind)
		if mod != nil {
			mod(&s)
		}
		return s, nil
	})
}

type fixture struct {
	root    string
	docs    *storage.DocumentStore
	backups *storage.BackupStore
	history *storage.MemoryHistory
	locks   *PathLocks
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	return &fixture{
		root:    root,
		docs:    storage.NewDocumentStore(root),
		backups: storage.NewBackupStore(nil),
		history: storage.NewMemoryHistory(),
		locks:   NewPathLocks(),
	}
}

func (f *fixture) service(settings Resolver) *EnhancementService {
	return NewEnhancementService(f.docs, settings,
		WithBackups(f.backups),
		WithHistory(f.history),
		WithLocks(f.locks),
	)
}


package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/specgate/pkg/storage"
)

func TestBackupServiceRestore(t *testing.T) {
	f := newFixture(t)
	path := writeFile(t, f.root, "design.md", "# Design\n\n## Overview\n")
	snap, err := f.backups.Snapshot(path, "manual")
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, f.root, "design.md", "# Design\n\nbroken\n")
	svc := NewBackupService(f.docs, f.backups, f.locks, nil)

	listed, err := svc.List("design.md")
	if err != nil || len(listed) != 1 || listed[0].ID != snap.ID {
		t.Fatalf("List = %v, %v", listed, err)
	}

	release, _ := f.locks.Acquire(path)
	if _, err := svc.Restore(snap.ID); !errors.Is(err, ErrBusy) {
		t.Errorf("restore during enhancement: err = %v", err)
	}
	release()

	if _, err := svc.Restore(snap.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := readFile(t, path); got != "# Design\n\n## Overview\n" {
		t.Errorf("restored content = %q", got)
	}

	if err := svc.Discard(snap.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Restore(snap.ID); !errors.Is(err, storage.ErrBackupNotFound) {
		t.Errorf("restore after discard: err = %v", err)
	}
}

func TestBackupServicePruneRejectsNonPositive(t *testing.T) {
	f := newFixture(t)
	svc := NewBackupService(f.docs, f.backups, nil, nil)
	if _, err := svc.Prune(0); err == nil {
		t.Error("expected error for zero retention")
	}
}

func TestHistoryServiceRuns(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.root, "requirements.md", sparseRequirements)
	writeFile(t, f.root, "tasks.md", tasksDoc)
	svc := f.service(nil)
	for i := 0; i < 2; i++ {
		if _, err := svc.Validate(context.Background(), EnhanceRequest{Path: "requirements.md"}); err != nil {
			t.Fatal(err)
		}
	}

	history := NewHistoryService(f.docs, f.history)
	runs, err := history.Runs("requirements.md", 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("Runs = %v, %v", runs, err)
	}
	all, _ := history.Runs("", 0)
	if len(all) != 2 {
		t.Errorf("all runs = %d", len(all))
	}
	if runs, _ := NewHistoryService(f.docs, nil).Runs("", 0); runs != nil {
		t.Error("nil history should list nothing")
	}
}

func TestPathLocks(t *testing.T) {
	l := NewPathLocks()
	release, err := l.Acquire("a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Acquire("a"); !errors.Is(err, ErrBusy) {
		t.Errorf("second acquire: %v", err)
	}
	if r, err := l.Acquire("b"); err != nil {
		t.Errorf("other path: %v", err)
	} else {
		r()
	}
	release()
	release()
	if _, err := l.Acquire("a"); err != nil {
		t.Errorf("after release: %v", err)
	}
}

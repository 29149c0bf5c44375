package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type collector struct {
	mu    sync.Mutex
	paths []string
}

func (c *collector) add(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, paths...)
}

func (c *collector) seen(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.paths {
		if filepath.Base(p) == name {
			return true
		}
	}
	return false
}

func startWatcher(t *testing.T, dir string, c *collector) context.CancelFunc {
	t.Helper()
	w, err := NewWatcher(nil, 50*time.Millisecond, c.add)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	return cancel
}

func TestWatcher_ReportsDocumentWrites(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "requirements.md")
	if err := os.WriteFile(doc, []byte("initial"), 0600); err != nil {
		t.Fatal(err)
	}

	var c collector
	cancel := startWatcher(t, dir, &c)
	defer cancel()

	if err := os.WriteFile(doc, []byte("modified"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(250 * time.Millisecond)

	if !c.seen("requirements.md") {
		t.Error("expected requirements.md to be reported")
	}
	if c.seen("notes.txt") {
		t.Error("notes.txt should be filtered out")
	}
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()

	var c collector
	cancel := startWatcher(t, dir, &c)
	defer cancel()

	spec := filepath.Join(dir, "auth")
	if err := os.Mkdir(spec, 0700); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(spec, "design.md"), []byte("# Design"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(250 * time.Millisecond)

	if !c.seen("design.md") {
		t.Error("expected design.md in a new directory to be reported")
	}
}

func TestWatcher_ContextCancellation(t *testing.T) {
	w, err := NewWatcher(nil, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop after context cancellation")
	}
}

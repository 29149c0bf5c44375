// Package watch re-scores quality documents when they change on disk.
package watch

import (
	"sort"
	"sync"
	"time"
)

// batcher collects changed paths and delivers them once no new change has
// arrived for the window.
type batcher struct {
	window  time.Duration
	deliver func([]string)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	stopped bool
}

func newBatcher(window time.Duration, deliver func([]string)) *batcher {
	return &batcher{window: window, deliver: deliver, pending: make(map[string]struct{})}
}

// Add records path and restarts the quiet window.
func (b *batcher) Add(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.pending[path] = struct{}{}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.window, b.flush)
}

func (b *batcher) flush() {
	b.mu.Lock()
	if b.stopped || len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(b.pending))
	for p := range b.pending {
		paths = append(paths, p)
	}
	b.pending = make(map[string]struct{})
	b.mu.Unlock()

	sort.Strings(paths)
	b.deliver(paths)
}

// Stop drops pending paths; nothing is delivered afterwards.
func (b *batcher) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.pending = nil
}

package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultQuiet = 500 * time.Millisecond

// Watcher reports batches of changed documents under a set of roots.
type Watcher struct {
	fs       *fsnotify.Watcher
	filter   *Filter
	quiet    time.Duration
	onChange func([]string)
}

// NewWatcher creates a watcher. quiet is how long a burst of events must
// settle before onChange runs; zero uses half a second.
func NewWatcher(filter *Filter, quiet time.Duration, onChange func([]string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if filter == nil {
		filter = NewFilter(nil, nil)
	}
	if quiet <= 0 {
		quiet = defaultQuiet
	}
	return &Watcher{fs: fw, filter: filter, quiet: quiet, onChange: onChange}, nil
}

// Add watches path. A directory is watched with all its subdirectories; a
// file is watched through its parent directory.
func (w *Watcher) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	if !info.IsDir() {
		return w.fs.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != path && skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// Run delivers change batches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	b := newBatcher(w.quiet, func(paths []string) {
		if w.onChange != nil {
			w.onChange(paths)
		}
	})
	defer b.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.Add(ev.Name)
					continue
				}
			}
			// Atomic saves arrive as create or rename of the final name.
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if w.filter.Matches(ev.Name) {
				b.Add(ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

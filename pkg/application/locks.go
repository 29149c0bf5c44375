package application

import "sync"

// PathLocks grants at most one in-flight operation per document path.
type PathLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewPathLocks() *PathLocks {
	return &PathLocks{held: make(map[string]struct{})}
}

// Acquire claims path without waiting. The returned release must be called
// exactly once.
func (l *PathLocks) Acquire(path string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[path]; busy {
		return nil, ErrBusy
	}
	l.held[path] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, path)
			l.mu.Unlock()
		})
	}, nil
}

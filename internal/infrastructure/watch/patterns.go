package watch

import (
	"path/filepath"
	"strings"
)

// DefaultInclude matches the conventional document file names.
var DefaultInclude = []string{"requirements.md", "design.md", "tasks.md", "*requirements*.md", "*design*.md", "*tasks*.md"}

// DefaultExclude skips snapshot copies and editor droppings.
var DefaultExclude = []string{"*.backup-*", "*.tmp", ".*.swp", "*~"}

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{".git": true, "node_modules": true, "backups": true}

// Filter decides which changed files are documents worth re-scoring.
type Filter struct {
	Include []string
	Exclude []string
}

// NewFilter returns a filter; nil slices fall back to the defaults.
func NewFilter(include, exclude []string) *Filter {
	if include == nil {
		include = DefaultInclude
	}
	if exclude == nil {
		exclude = DefaultExclude
	}
	return &Filter{Include: include, Exclude: exclude}
}

// Matches reports whether path passes the filter. Excludes win; an empty
// include list admits everything.
func (f *Filter) Matches(path string) bool {
	if inSkippedDir(path) {
		return false
	}
	if anyMatch(f.Exclude, path) {
		return false
	}
	return len(f.Include) == 0 || anyMatch(f.Include, path)
}

func anyMatch(patterns []string, path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, p := range patterns {
		if ok, _ := filepath.Match(strings.ToLower(p), base); ok {
			return true
		}
		if ok, _ := filepath.Match(p, filepath.ToSlash(path)); ok {
			return true
		}
	}
	return false
}

func inSkippedDir(path string) bool {
	dir := filepath.Dir(filepath.ToSlash(path))
	for _, part := range strings.Split(dir, "/") {
		if skippedDirs[part] {
			return true
		}
	}
	return false
}

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocumentStore reads and writes markdown documents on disk. When root
// is set, paths are resolved against it and may not leave it.
type DocumentStore struct {
	root string
}

func NewDocumentStore(root string) *DocumentStore {
	return &DocumentStore{root: root}
}

// Root returns the workspace root, or "" when paths are unconfined.
func (s *DocumentStore) Root() string {
	return s.root
}

// ResolvePath returns the cleaned absolute location of path.
func (s *DocumentStore) ResolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if s.root == "" {
		return filepath.Abs(path)
	}
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, path)
	}
	full = filepath.Clean(full)
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return full, nil
}

func (s *DocumentStore) Read(path string) (string, error) {
	full, err := s.ResolvePath(path)
	if err != nil {
		return "", err
	}
	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(full)
	if err != nil {
		return "", pathError("read", path, err)
	}
	return string(data), nil
}

// Write replaces the document atomically, keeping its permission bits.
func (s *DocumentStore) Write(path, content string) error {
	full, err := s.ResolvePath(path)
	if err != nil {
		return err
	}
	if err := writeAtomic(full, []byte(content)); err != nil {
		return pathError("write", path, err)
	}
	return nil
}

func (s *DocumentStore) Exists(path string) bool {
	full, err := s.ResolvePath(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// writeAtomic writes data to a temp file beside path and renames it over
// path. New files get 0600.
func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, mode); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

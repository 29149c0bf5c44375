package storage

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrNotFound       = errors.New("file not found")
	ErrPermission     = errors.New("permission denied")
	ErrIO             = errors.New("i/o error")
	ErrOutsideRoot    = errors.New("path escapes workspace root")
	ErrBackupNotFound = errors.New("backup not found")
)

// PathError describes a failed document operation. Kind is one of
// ErrNotFound, ErrPermission or ErrIO, so callers can match with errors.Is.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

func (e *PathError) Is(target error) bool { return target == e.Kind }

func pathError(op, path string, err error) error {
	kind := ErrIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermission
	}
	return &PathError{Op: op, Path: path, Kind: kind, Err: err}
}

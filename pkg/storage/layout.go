package storage

import (
	"path/filepath"
	"strings"
)

// SpecRoots are the conventional directories that hold one folder per spec.
var SpecRoots = []string{
	filepath.Join(".kiro", "specs"),
	filepath.Join(".sce", "specs"),
}

const BackupDirName = "backups"

// BackupDir returns where snapshots of doc are kept: <spec>/backups for a
// document under a conventional spec root, otherwise a backups directory
// beside the document.
func BackupDir(doc string) string {
	if dir, ok := specDir(doc); ok {
		return filepath.Join(dir, BackupDirName)
	}
	return filepath.Join(filepath.Dir(filepath.Clean(doc)), BackupDirName)
}

// SpecName returns the spec folder name for doc, or "" outside a spec root.
func SpecName(doc string) string {
	if dir, ok := specDir(doc); ok {
		return filepath.Base(dir)
	}
	return ""
}

func specDir(doc string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(doc)), "/")
	for _, root := range SpecRoots {
		rp := strings.Split(filepath.ToSlash(root), "/")
		// A spec folder must sit between the root and the document.
		for i := 0; i+len(rp) < len(parts)-1; i++ {
			if equalParts(parts[i:i+len(rp)], rp) {
				return filepath.FromSlash(strings.Join(parts[:i+len(rp)+1], "/")), true
			}
		}
	}
	return "", false
}

func equalParts(a, b []string) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package document

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies which assessment a document receives.
type Kind string

const (
	KindRequirements Kind = "requirements"
	KindDesign       Kind = "design"
	KindTasks        Kind = "tasks"
)

func (k Kind) Valid() bool {
	switch k {
	case KindRequirements, KindDesign, KindTasks:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q (expected requirements, design or tasks)", ErrUnknownKind, s)
	}
	return k, nil
}

// InferKind guesses the kind from a conventional file name such as
// requirements.md, design.md or tasks.md.
func InferKind(path string) (Kind, bool) {
	base := strings.ToLower(filepath.Base(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	switch {
	case strings.Contains(base, "requirement"):
		return KindRequirements, true
	case strings.Contains(base, "design"):
		return KindDesign, true
	case strings.Contains(base, "task"):
		return KindTasks, true
	}
	return "", false
}

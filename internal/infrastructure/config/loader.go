package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/specgate/pkg/application"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

const (
	ProjectDir  = ".specgate"
	ProjectFile = "config.yaml"
	// SpecFile sits beside a document and overrides the project file.
	SpecFile = "specgate.yaml"
)

var ErrInvalid = errors.New("invalid configuration")

// Iteration limits are clamped into these ranges.
const (
	minIterations = 1
	maxIterations = 100
	minPlateau    = 1
	maxPlateau    = 10
)

// Loader resolves settings per document. Layers, lowest first: defaults,
// project config, spec-level config, environment, overrides.
type Loader struct {
	root        string
	retryConfig retry.Config
	lookupEnv   func(string) (string, bool)
	overrides   File
	logger      *zap.Logger
}

type Option func(*Loader)

// WithOverrides sets the top layer, normally built from CLI flags.
func WithOverrides(f File) Option {
	return func(l *Loader) { l.overrides = f }
}

// WithEnv replaces os.LookupEnv.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(l *Loader) { l.lookupEnv = lookup }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		lookupEnv: os.LookupEnv,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ProjectPath is the location of the project configuration file.
func (l *Loader) ProjectPath() string {
	return filepath.Join(l.root, ProjectDir, ProjectFile)
}

// Effective merges every layer that applies to a document in dir. An empty
// dir skips the spec-level file.
func (l *Loader) Effective(dir string) (File, error) {
	var merged File
	project, err := l.readLayer(l.ProjectPath())
	if err != nil {
		return File{}, err
	}
	merged.overlay(project)
	if dir != "" {
		spec, err := l.readLayer(filepath.Join(dir, SpecFile))
		if err != nil {
			return File{}, err
		}
		merged.overlay(spec)
	}
	env, err := fromEnv(l.lookupEnv)
	if err != nil {
		return File{}, err
	}
	merged.overlay(env)
	merged.overlay(l.overrides)
	return merged, nil
}

// Resolve implements application.Resolver.
func (l *Loader) Resolve(path string, kind document.Kind) (application.Settings, error) {
	dir := ""
	if path != "" {
		dir = filepath.Dir(path)
	}
	f, err := l.Effective(dir)
	if err != nil {
		return application.Settings{}, err
	}
	return l.settings(f, kind)
}

func (l *Loader) settings(f File, kind document.Kind) (application.Settings, error) {
	s := application.DefaultSettings(kind)

	var threshold *float64
	switch kind {
	case document.KindRequirements:
		threshold = f.Thresholds.Requirements
	case document.KindDesign:
		threshold = f.Thresholds.Design
	case document.KindTasks:
		threshold = f.Thresholds.Tasks
	}
	if threshold != nil {
		s.Convergence.Threshold = clampFloat(*threshold, 0, 10)
	}
	if v := f.Convergence.MaxIterations; v != nil {
		s.Convergence.MaxIterations = clampInt(*v, minIterations, maxIterations)
	}
	if v := f.Convergence.PlateauIterations; v != nil {
		s.Convergence.PlateauIterations = clampInt(*v, minPlateau, maxPlateau)
	}
	if v := f.Convergence.MinImprovement; v != nil {
		s.Convergence.MinImprovement = clampFloat(*v, 0, 10)
	}
	if f.Convergence.Timeout != "" {
		d, err := time.ParseDuration(f.Convergence.Timeout)
		if err != nil || d < 0 {
			return application.Settings{}, fmt.Errorf("%w: timeout %q", ErrInvalid, f.Convergence.Timeout)
		}
		s.Timeout = d
	}

	var override map[string]float64
	switch kind {
	case document.KindRequirements:
		override = f.Weights.Requirements
	case document.KindDesign:
		override = f.Weights.Design
	}
	if len(override) > 0 {
		w, err := quality.Merge(kind, override)
		if err != nil {
			return application.Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		normalized, changed := w.Normalize()
		if changed {
			l.logger.Warn("weights renormalized", zap.String("kind", string(kind)), zap.Float64("sum", w.Sum()))
		}
		s.Weights = normalized
	}

	if v := f.Backup.Enabled; v != nil {
		s.Backup.Enabled = *v
	}
	if v := f.Backup.CleanupOnSuccess; v != nil {
		s.Backup.CleanupOnSuccess = *v
	}
	if v := f.Backup.RetentionDays; v != nil {
		s.Backup.Retention = time.Duration(*v) * 24 * time.Hour
	}
	if v := f.History.Enabled; v != nil {
		s.History = *v
	}
	return s, nil
}

// readLayer decodes one YAML file. A missing file is an empty layer.
func (l *Loader) readLayer(path string) (File, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return File{}, nil
	}
	retryer := retry.New[[]byte](l.retryConfig)
	data, err := retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- Path is derived from the workspace root or a document directory
		return os.ReadFile(path)
	})
	if err != nil {
		return File{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return decode(path, data)
}

func decode(name string, data []byte) (File, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return File{}, fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
	}
	if err := validate(name, raw); err != nil {
		return File{}, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
	}
	return f, nil
}

// Save writes f as the project configuration file.
func (l *Loader) Save(f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if _, err := decode(l.ProjectPath(), data); err != nil {
		return err
	}
	// G301: Use 0700 for directories
	if err := os.MkdirAll(filepath.Dir(l.ProjectPath()), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(l.ProjectPath(), data, 0600)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

var _ application.Resolver = (*Loader)(nil)

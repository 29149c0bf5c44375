package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestResolveDefaults(t *testing.T) {
	l := NewLoader(t.TempDir(), WithEnv(env(nil)))

	s, err := l.Resolve("", document.KindRequirements)
	require.NoError(t, err)
	assert.Equal(t, 9.0, s.Convergence.Threshold)
	assert.Equal(t, 10, s.Convergence.MaxIterations)
	assert.Equal(t, 3, s.Convergence.PlateauIterations)
	assert.Equal(t, 0.1, s.Convergence.MinImprovement)
	assert.Zero(t, s.Timeout)
	assert.True(t, s.Backup.Enabled)
	assert.True(t, s.Backup.CleanupOnSuccess)
	assert.Equal(t, 7*24*time.Hour, s.Backup.Retention)
	assert.True(t, s.History)

	tasks, err := l.Resolve("", document.KindTasks)
	require.NoError(t, err)
	assert.Equal(t, 8.0, tasks.Convergence.Threshold)
}

func TestResolvePrecedence(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, filepath.Join(root, ProjectDir, ProjectFile), `
thresholds:
  requirements: 8.5
  design: 8.0
convergence:
  max_iterations: 20
  plateau_iterations: 4
backup:
  retention_days: 3
`)
	specDir := filepath.Join(root, ".kiro", "specs", "auth")
	writeConfig(t, filepath.Join(specDir, SpecFile), `
thresholds:
  requirements: 9.5
convergence:
  timeout: 45s
`)
	l := NewLoader(root,
		WithEnv(env(map[string]string{"SPECGATE_MAX_ITERATIONS": "5"})),
		WithOverrides(File{Convergence: Convergence{PlateauIterations: Int(2)}}),
	)

	s, err := l.Resolve(filepath.Join(specDir, "requirements.md"), document.KindRequirements)
	require.NoError(t, err)
	assert.Equal(t, 9.5, s.Convergence.Threshold, "spec file beats project file")
	assert.Equal(t, 5, s.Convergence.MaxIterations, "environment beats files")
	assert.Equal(t, 2, s.Convergence.PlateauIterations, "overrides beat environment")
	assert.Equal(t, 45*time.Second, s.Timeout)
	assert.Equal(t, 3*24*time.Hour, s.Backup.Retention)

	other, err := l.Resolve(filepath.Join(root, "docs", "design.md"), document.KindDesign)
	require.NoError(t, err)
	assert.Equal(t, 8.0, other.Convergence.Threshold)
	assert.Zero(t, other.Timeout)
}

func TestResolveClampsLimits(t *testing.T) {
	tests := []struct {
		name        string
		vars        map[string]string
		wantMax     int
		wantPlateau int
		wantThresh  float64
	}{
		{"too high", map[string]string{"SPECGATE_MAX_ITERATIONS": "500", "SPECGATE_PLATEAU_ITERATIONS": "50", "SPECGATE_THRESHOLD_REQUIREMENTS": "12"}, 100, 10, 10},
		{"too low", map[string]string{"SPECGATE_MAX_ITERATIONS": "0", "SPECGATE_PLATEAU_ITERATIONS": "-1", "SPECGATE_THRESHOLD_REQUIREMENTS": "-2"}, 1, 1, 0},
		{"in range", map[string]string{"SPECGATE_MAX_ITERATIONS": "7", "SPECGATE_PLATEAU_ITERATIONS": "2"}, 7, 2, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(t.TempDir(), WithEnv(env(tt.vars)))
			s, err := l.Resolve("", document.KindRequirements)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMax, s.Convergence.MaxIterations)
			assert.Equal(t, tt.wantPlateau, s.Convergence.PlateauIterations)
			assert.Equal(t, tt.wantThresh, s.Convergence.Threshold)
		})
	}
}

func TestResolveRenormalizesWeights(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, filepath.Join(root, ProjectDir, ProjectFile), `
weights:
  requirements:
    structure: 0.5
`)
	l := NewLoader(root, WithEnv(env(nil)))

	s, err := l.Resolve("", document.KindRequirements)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.Weights.Sum(), 1e-9)
	assert.InDelta(t, 0.5/1.3, s.Weights[quality.CriterionStructure], 1e-9)
}

func TestResolveRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown criterion", "weights:\n  requirements:\n    readability: 0.2\n"},
		{"unknown key", "threshold: 9\n"},
		{"threshold out of range", "thresholds:\n  design: 11\n"},
		{"bad yaml", "thresholds: [\n"},
		{"bad timeout", "convergence:\n  timeout: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeConfig(t, filepath.Join(root, ProjectDir, ProjectFile), tt.content)
			_, err := NewLoader(root, WithEnv(env(nil))).Resolve("", document.KindDesign)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestResolveRejectsBadEnvironment(t *testing.T) {
	l := NewLoader(t.TempDir(), WithEnv(env(map[string]string{"SPECGATE_BACKUP_ENABLED": "maybe"})))
	_, err := l.Resolve("", document.KindRequirements)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	l := NewLoader(root, WithEnv(env(nil)))
	require.NoError(t, l.Save(File{Thresholds: Thresholds{Design: Float(7.5)}, Backup: Backup{Enabled: Bool(false)}}))

	s, err := l.Resolve("", document.KindDesign)
	require.NoError(t, err)
	assert.Equal(t, 7.5, s.Convergence.Threshold)
	assert.False(t, s.Backup.Enabled)
}

func TestLoadDotEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env.local"), []byte("SPECGATE_TEST_DOTENV=local\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("SPECGATE_TEST_DOTENV=shared\nSPECGATE_TEST_DOTENV_ONLY=shared\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("SPECGATE_TEST_DOTENV")
		os.Unsetenv("SPECGATE_TEST_DOTENV_ONLY")
	})

	require.NoError(t, LoadDotEnv(root))
	assert.Equal(t, "local", os.Getenv("SPECGATE_TEST_DOTENV"))
	assert.Equal(t, "shared", os.Getenv("SPECGATE_TEST_DOTENV_ONLY"))
}

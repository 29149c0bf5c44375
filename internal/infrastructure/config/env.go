package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const EnvPrefix = "SPECGATE_"

// LoadDotEnv loads .env.local and then .env from root. Variables already in
// the environment are never overwritten, so .env.local wins over .env.
func LoadDotEnv(root string) error {
	for _, name := range []string{".env.local", ".env"} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// fromEnv builds a layer from SPECGATE_* variables.
func fromEnv(lookup func(string) (string, bool)) (File, error) {
	var f File
	var errs []error
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	float := func(key string, dst **float64) {
		if v, ok := get(key); ok {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = &x
		}
	}
	integer := func(key string, dst **int) {
		if v, ok := get(key); ok {
			x, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = &x
		}
	}
	boolean := func(key string, dst **bool) {
		if v, ok := get(key); ok {
			x, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = &x
		}
	}

	float("THRESHOLD_REQUIREMENTS", &f.Thresholds.Requirements)
	float("THRESHOLD_DESIGN", &f.Thresholds.Design)
	float("THRESHOLD_TASKS", &f.Thresholds.Tasks)
	integer("MAX_ITERATIONS", &f.Convergence.MaxIterations)
	integer("PLATEAU_ITERATIONS", &f.Convergence.PlateauIterations)
	float("MIN_IMPROVEMENT", &f.Convergence.MinImprovement)
	if v, ok := get("TIMEOUT"); ok {
		f.Convergence.Timeout = v
	}
	boolean("BACKUP_ENABLED", &f.Backup.Enabled)
	boolean("BACKUP_CLEANUP", &f.Backup.CleanupOnSuccess)
	integer("BACKUP_RETENTION_DAYS", &f.Backup.RetentionDays)
	boolean("HISTORY_ENABLED", &f.History.Enabled)
	if v, ok := get("HISTORY_DATABASE"); ok {
		f.History.Database = v
	}
	boolean("VERBOSE", &f.Logging.Verbose)
	if v, ok := get("LOG_FILE"); ok {
		f.Logging.File = v
	}

	if len(errs) > 0 {
		return File{}, fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return f, nil
}

// Package config loads specgate settings from YAML files, the environment
// and command-line overrides.
package config

// Thresholds are the passing scores per document kind.
type Thresholds struct {
	Requirements *float64 `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	Design       *float64 `yaml:"design,omitempty" json:"design,omitempty"`
	Tasks        *float64 `yaml:"tasks,omitempty" json:"tasks,omitempty"`
}

type Convergence struct {
	MaxIterations     *int     `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty"`
	PlateauIterations *int     `yaml:"plateau_iterations,omitempty" json:"plateau_iterations,omitempty"`
	MinImprovement    *float64 `yaml:"min_improvement,omitempty" json:"min_improvement,omitempty"`
	// Timeout is a Go duration such as "30s"; empty or "0" means none.
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

type Weights struct {
	Requirements map[string]float64 `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	Design       map[string]float64 `yaml:"design,omitempty" json:"design,omitempty"`
}

type Backup struct {
	Enabled          *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	CleanupOnSuccess *bool `yaml:"cleanup_on_success,omitempty" json:"cleanup_on_success,omitempty"`
	RetentionDays    *int  `yaml:"retention_days,omitempty" json:"retention_days,omitempty"`
}

type History struct {
	Enabled  *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Database string `yaml:"database,omitempty" json:"database,omitempty"`
}

type Logging struct {
	Verbose *bool  `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	File    string `yaml:"file,omitempty" json:"file,omitempty"`
}

// File is one configuration layer. Unset fields leave the layer below
// untouched.
type File struct {
	Thresholds  Thresholds  `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	Convergence Convergence `yaml:"convergence,omitempty" json:"convergence,omitempty"`
	Weights     Weights     `yaml:"weights,omitempty" json:"weights,omitempty"`
	Backup      Backup      `yaml:"backup,omitempty" json:"backup,omitempty"`
	History     History     `yaml:"history,omitempty" json:"history,omitempty"`
	Logging     Logging     `yaml:"logging,omitempty" json:"logging,omitempty"`
}

// overlay copies every set field of top onto f.
func (f *File) overlay(top File) {
	setFloat(&f.Thresholds.Requirements, top.Thresholds.Requirements)
	setFloat(&f.Thresholds.Design, top.Thresholds.Design)
	setFloat(&f.Thresholds.Tasks, top.Thresholds.Tasks)
	setInt(&f.Convergence.MaxIterations, top.Convergence.MaxIterations)
	setInt(&f.Convergence.PlateauIterations, top.Convergence.PlateauIterations)
	setFloat(&f.Convergence.MinImprovement, top.Convergence.MinImprovement)
	setString(&f.Convergence.Timeout, top.Convergence.Timeout)
	f.Weights.Requirements = mergeWeights(f.Weights.Requirements, top.Weights.Requirements)
	f.Weights.Design = mergeWeights(f.Weights.Design, top.Weights.Design)
	setBool(&f.Backup.Enabled, top.Backup.Enabled)
	setBool(&f.Backup.CleanupOnSuccess, top.Backup.CleanupOnSuccess)
	setInt(&f.Backup.RetentionDays, top.Backup.RetentionDays)
	setBool(&f.History.Enabled, top.History.Enabled)
	setString(&f.History.Database, top.History.Database)
	setBool(&f.Logging.Verbose, top.Logging.Verbose)
	setString(&f.Logging.File, top.Logging.File)
}

func setFloat(dst **float64, v *float64) {
	if v != nil {
		x := *v
		*dst = &x
	}
}

func setInt(dst **int, v *int) {
	if v != nil {
		x := *v
		*dst = &x
	}
}

func setBool(dst **bool, v *bool) {
	if v != nil {
		x := *v
		*dst = &x
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeWeights(base, top map[string]float64) map[string]float64 {
	if len(top) == 0 {
		return base
	}
	out := make(map[string]float64, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}

// Float, Int and Bool return pointers for building layers in code.
func Float(v float64) *float64 { return &v }
func Int(v int) *int { return &v }
func Bool(v bool) *bool { return &v }

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/config"
	"github.com/felixgeelhaar/specgate/pkg/application"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

var (
	configKind  string
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the project configuration",
}

// settingsView is the printable form of application.Settings.
type settingsView struct {
	Kind              document.Kind      `yaml:"kind"`
	Threshold         float64            `yaml:"threshold"`
	MaxIterations     int                `yaml:"max_iterations"`
	PlateauIterations int                `yaml:"plateau_iterations"`
	MinImprovement    float64            `yaml:"min_improvement"`
	Timeout           string             `yaml:"timeout,omitempty"`
	Weights           map[string]float64 `yaml:"weights,omitempty"`
	Backup            struct {
		Enabled          bool `yaml:"enabled"`
		CleanupOnSuccess bool `yaml:"cleanup_on_success"`
		RetentionDays    int  `yaml:"retention_days"`
	} `yaml:"backup"`
	History bool `yaml:"history"`
}

func newSettingsView(kind document.Kind, s application.Settings) settingsView {
	v := settingsView{
		Kind:              kind,
		Threshold:         s.Convergence.Threshold,
		MaxIterations:     s.Convergence.MaxIterations,
		PlateauIterations: s.Convergence.PlateauIterations,
		MinImprovement:    s.Convergence.MinImprovement,
		History:           s.History,
	}
	if s.Timeout > 0 {
		v.Timeout = s.Timeout.String()
	}
	if len(s.Weights) > 0 {
		v.Weights = make(map[string]float64, len(s.Weights))
		for c, w := range s.Weights {
			v.Weights[string(c)] = w
		}
	}
	v.Backup.Enabled = s.Backup.Enabled
	v.Backup.CleanupOnSuccess = s.Backup.CleanupOnSuccess
	v.Backup.RetentionDays = int(s.Backup.Retention.Hours() / 24)
	return v
}

var configShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the effective settings",
	Long: `Print the effective settings after layering defaults, the project
config, the spec-level specgate.yaml beside path, SPECGATE_* environment
variables and command-line flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		if err := config.LoadDotEnv(root); err != nil {
			return err
		}
		loader := config.NewLoader(root, config.WithOverrides(overrides(cmd)))

		path := ""
		if len(args) > 0 {
			path = absPath(root, args[0])
		}
		kinds := []document.Kind{document.KindRequirements, document.KindDesign, document.KindTasks}
		switch {
		case configKind != "":
			k, err := document.ParseKind(configKind)
			if err != nil {
				return MapError(err)
			}
			kinds = []document.Kind{k}
		case path != "":
			if k, ok := document.InferKind(path); ok {
				kinds = []document.Kind{k}
			}
		}

		views := make([]settingsView, 0, len(kinds))
		for _, k := range kinds {
			s, err := loader.Resolve(path, k)
			if err != nil {
				return MapError(err)
			}
			views = append(views, newSettingsView(k, s))
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(views)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a project configuration with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		loader := config.NewLoader(root)
		if _, err := os.Stat(loader.ProjectPath()); err == nil && !configForce {
			return NewCLIError("configuration already exists", "Pass --force to overwrite "+relPath(root, loader.ProjectPath()), nil)
		}
		if err := loader.Save(defaultFile()); err != nil {
			return MapError(err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.Join(config.ProjectDir, config.ProjectFile))
		return nil
	},
}

func defaultFile() config.File {
	req := application.DefaultSettings(document.KindRequirements)
	tasks := application.DefaultSettings(document.KindTasks)
	return config.File{
		Thresholds: config.Thresholds{
			Requirements: config.Float(req.Convergence.Threshold),
			Design:       config.Float(application.DefaultSettings(document.KindDesign).Convergence.Threshold),
			Tasks:        config.Float(tasks.Convergence.Threshold),
		},
		Convergence: config.Convergence{
			MaxIterations:     config.Int(req.Convergence.MaxIterations),
			PlateauIterations: config.Int(req.Convergence.PlateauIterations),
			MinImprovement:    config.Float(req.Convergence.MinImprovement),
		},
		Backup: config.Backup{
			Enabled:          config.Bool(req.Backup.Enabled),
			CleanupOnSuccess: config.Bool(req.Backup.CleanupOnSuccess),
			RetentionDays:    config.Int(int(req.Backup.Retention.Hours() / 24)),
		},
		History: config.History{Enabled: config.Bool(req.History)},
	}
}

func init() {
	configShowCmd.Flags().StringVarP(&configKind, "kind", "k", "", "Only show settings for this document kind")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing configuration")
	configCmd.AddCommand(configShowCmd, configInitCmd)
	RootCmd.AddCommand(configCmd)
}

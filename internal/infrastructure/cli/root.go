package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/config"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Persistent flags shared by every command.
var (
	projectPath       string
	verboseFlag       bool
	logFileFlag       string
	thresholdFlag     float64
	maxIterationsFlag int
	plateauFlag       int
	minImprovement    float64
	timeoutFlag       time.Duration
	noBackupFlag      bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "specgate",
	Version: Version,
	Short:   "Score, enhance and gate spec-driven development documents",
	Long: `specgate scores requirements, design and tasks documents against a
fixed rubric and iteratively enhances requirements and design documents
until they reach a quality threshold.

Exit codes:
  0  the document passed
  1  the document is below its threshold
  2  operational error (bad arguments, unreadable file, invalid config)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with a context canceled on SIGINT/SIGTERM.
// Errors are reported to stderr before being returned.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := RootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(RootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&projectPath, "project", "", "Workspace root (defaults to the current directory)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose logging")
	pf.StringVar(&logFileFlag, "log-file", "", "Write logs to this file")
	pf.Float64Var(&thresholdFlag, "threshold", 0, "Override the quality threshold (0-10)")
	pf.IntVar(&maxIterationsFlag, "max-iterations", 0, "Override the maximum number of enhancement iterations")
	pf.IntVar(&plateauFlag, "plateau", 0, "Override the number of stalled iterations before stopping")
	pf.Float64Var(&minImprovement, "min-improvement", 0, "Override the minimum score gain that counts as progress")
	pf.DurationVar(&timeoutFlag, "timeout", 0, "Abort an enhancement after this long")
	pf.BoolVar(&noBackupFlag, "no-backup", false, "Do not snapshot documents before writing")
}

// overrides turns explicitly set persistent flags into the top config layer.
func overrides(cmd *cobra.Command) config.File {
	var f config.File
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		t := config.Float(thresholdFlag)
		f.Thresholds = config.Thresholds{Requirements: t, Design: t, Tasks: t}
	}
	if flags.Changed("max-iterations") {
		f.Convergence.MaxIterations = config.Int(maxIterationsFlag)
	}
	if flags.Changed("plateau") {
		f.Convergence.PlateauIterations = config.Int(plateauFlag)
	}
	if flags.Changed("min-improvement") {
		f.Convergence.MinImprovement = config.Float(minImprovement)
	}
	if flags.Changed("timeout") {
		f.Convergence.Timeout = timeoutFlag.String()
	}
	if flags.Changed("no-backup") && noBackupFlag {
		f.Backup.Enabled = config.Bool(false)
	}
	return f
}

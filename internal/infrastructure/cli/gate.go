package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/specgate/pkg/application"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

var (
	gateFlags     documentFlags
	gateNoEnhance bool
	gateDryRun    bool
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Check a document against its quality threshold",
	Long: `Check a document against its quality threshold, enhancing it first
unless --no-enhance is set. Tasks documents are only scored.

The score, threshold and verdict are always printed, even when no
improvement could be applied.

Exit codes: 0 pass, 1 below threshold, 2 operational error.

Examples:
  specgate gate requirements .kiro/specs/auth/requirements.md
  specgate gate design .kiro/specs/auth/design.md --no-enhance
  specgate gate tasks .kiro/specs/auth/tasks.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return NewCLIError(fmt.Sprintf("unknown document kind %q", args[0]), "Use 'specgate gate requirements|design|tasks <path>'", nil)
	},
}

func newGateKindCmd(kind document.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <path>", kind),
		Short: fmt.Sprintf("Gate a %s document", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGate(cmd, kind, args[0])
		},
	}
}

func runGate(cmd *cobra.Command, kind document.Kind, path string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	req, err := gateFlags.request(s.root, path)
	if err != nil {
		return err
	}
	out, err := s.Gate.Check(cmd.Context(), application.GateRequest{
		Path:          req.Path,
		Kind:          kind,
		CompanionPath: req.CompanionPath,
		Language:      req.Language,
		NoEnhance:     gateNoEnhance,
		DryRun:        gateDryRun,
	})

	w := cmd.OutOrStdout()
	if out.Result != nil || out.Tasks != nil {
		if gateFlags.json {
			if jerr := writeJSON(w, out); jerr != nil {
				return jerr
			}
		} else {
			printOutcome(w, s.root, req.Path, out, gateDryRun)
		}
	}
	if err != nil {
		return MapError(err)
	}
	if out.ExitCode == application.ExitFail {
		return gateFailure(relPath(s.root, req.Path), out.Score, out.Threshold)
	}
	return nil
}

func init() {
	pf := gateCmd.PersistentFlags()
	pf.StringVar(&gateFlags.companion, "companion", "", "Requirements document used for design traceability")
	pf.StringVar(&gateFlags.language, "language", "", "Force the document language (en, zh)")
	pf.BoolVar(&gateFlags.json, "json", false, "Output in JSON format")
	pf.BoolVar(&gateNoEnhance, "no-enhance", false, "Only score the document; never modify it")
	pf.BoolVar(&gateDryRun, "dry-run", false, "Enhance in memory without writing the document")
	for _, kind := range []document.Kind{document.KindRequirements, document.KindDesign, document.KindTasks} {
		gateCmd.AddCommand(newGateKindCmd(kind))
	}
	RootCmd.AddCommand(gateCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	enhanceFlags  documentFlags
	enhanceDryRun bool
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance <path>",
	Short: "Iteratively improve a requirements or design document",
	Long: `Enhance a requirements or design document until it reaches its quality
threshold, stops improving, or runs out of iterations. Existing content is
never removed; improvements are inserted as new sections or lines. A snapshot
is taken before the first write unless --no-backup is set.

Examples:
  specgate enhance .kiro/specs/auth/requirements.md
  specgate enhance design.md --dry-run
  specgate enhance requirements.md --threshold 8 --max-iterations 5`,
	Args: cobra.ExactArgs(1),
	RunE: runEnhanceCmd,
}

func runEnhanceCmd(cmd *cobra.Command, args []string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	req, err := enhanceFlags.request(s.root, args[0])
	if err != nil {
		return err
	}
	req.DryRun = enhanceDryRun
	res, err := s.Enhance.Enhance(cmd.Context(), req)
	if err != nil {
		return MapError(err)
	}

	out := cmd.OutOrStdout()
	if enhanceFlags.json {
		if err := writeJSON(out, res); err != nil {
			return err
		}
	} else {
		printResult(out, s.root, res, enhanceDryRun)
	}
	if res.StopReason.Fatal() {
		mapped := MapError(res.Err)
		if cliErr, ok := mapped.(*CLIError); ok {
			return cliErr
		}
		return NewCLIError(fmt.Sprintf("enhancement stopped (%s)", res.StopReason), "", res.Err)
	}
	return nil
}

func init() {
	enhanceFlags.bind(enhanceCmd, true)
	enhanceCmd.Flags().BoolVar(&enhanceDryRun, "dry-run", false, "Report what would change without writing the document")
	RootCmd.AddCommand(enhanceCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	scoreFlags    documentFlags
	scoreMarkdown bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <path>",
	Short: "Score a document and show the per-criterion breakdown",
	Long: `Score a requirements, design or tasks document without modifying it.

Examples:
  specgate score .kiro/specs/auth/requirements.md
  specgate score docs/design.md --companion docs/requirements.md
  specgate score tasks.md --json`,
	Args: cobra.ExactArgs(1),
	RunE: runScoreCmd,
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	req, err := scoreFlags.request(s.root, args[0])
	if err != nil {
		return err
	}
	report, err := s.Enhance.Report(cmd.Context(), req)
	if err != nil {
		return MapError(err)
	}

	out := cmd.OutOrStdout()
	switch {
	case scoreFlags.json:
		return writeJSON(out, report)
	case scoreMarkdown:
		_, err := fmt.Fprint(out, markdownReport(s.root, report))
		return err
	}
	printReport(out, s.root, report)
	return nil
}

func init() {
	scoreFlags.bind(scoreCmd, true)
	scoreCmd.Flags().BoolVar(&scoreMarkdown, "markdown", false, "Output a Markdown report")
	RootCmd.AddCommand(scoreCmd)
}

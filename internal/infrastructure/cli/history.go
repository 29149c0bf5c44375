package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "Show recorded enhancement and validation runs",
	Long: `Show recorded runs, newest first. Validation-only gates are listed as
dry runs.

Examples:
  specgate history
  specgate history requirements.md --limit 5
  specgate history --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistoryCmd,
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	path := ""
	if len(args) > 0 {
		path = absPath(s.root, args[0])
	}
	runs, err := s.History.Runs(path, historyLimit)
	if err != nil {
		return MapError(err)
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		return writeJSON(out, runs)
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	columns := []table.Column{
		{Title: "Started", Width: 19},
		{Title: "Document", Width: 32},
		{Title: "Kind", Width: 12},
		{Title: "Score", Width: 13},
		{Title: "Iter", Width: 4},
		{Title: "Stopped", Width: 16},
		{Title: "Mode", Width: 8},
	}
	rows := make([]table.Row, 0, len(runs))
	for _, r := range runs {
		mode := "write"
		if r.DryRun {
			mode = "dry-run"
		}
		rows = append(rows, table.Row{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			relPath(s.root, r.Path),
			r.Kind,
			fmt.Sprintf("%.2f -> %.2f", r.InitialScore, r.FinalScore),
			fmt.Sprintf("%d", r.Iterations),
			r.StopReason,
			mode,
		})
	}
	_, _ = fmt.Fprintln(out, renderTable(columns, rows))
	return nil
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(historyCmd)
}

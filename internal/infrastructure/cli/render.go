package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/specgate/pkg/application"
	"github.com/felixgeelhaar/specgate/pkg/domain/convergence"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

// Styles
var titleStyle = lipgloss.NewStyle().Bold(true)
var passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
var failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

func verdict(passed bool) string {
	if passed {
		return passStyle.Render("PASS")
	}
	return failStyle.Render("FAIL")
}

// renderTable draws a static bubbles table; nothing is selected.
func renderTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return t.View()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func breakdownTable(b quality.Breakdown) string {
	columns := []table.Column{
		{Title: "Criterion", Width: 22},
		{Title: "Weight", Width: 8},
		{Title: "Raw", Width: 6},
		{Title: "Weighted", Width: 9},
	}
	rows := make([]table.Row, 0, len(b.Lines))
	for _, l := range b.Lines {
		rows = append(rows, table.Row{
			string(l.Criterion),
			fmt.Sprintf("%.2f", l.Weight),
			fmt.Sprintf("%.1f", l.Raw),
			fmt.Sprintf("%.2f", l.Weighted),
		})
	}
	return renderTable(columns, rows)
}

func printReport(w io.Writer, root string, r application.ScoreReport) {
	_, _ = fmt.Fprintf(w, "%s %s\n", titleStyle.Render(relPath(root, r.Path)), dimStyle.Render(fmt.Sprintf("(%s, %s)", r.Kind, r.Language)))
	_, _ = fmt.Fprintf(w, "Score: %.2f / 10   Threshold: %.2f   %s\n", r.Score, r.Threshold, verdict(r.Passed))
	if len(r.Breakdown.Lines) > 0 {
		_, _ = fmt.Fprintln(w, breakdownTable(r.Breakdown))
	}
	printList(w, "Missing sections", r.Breakdown.MissingSections)
	printList(w, "Incomplete sections", r.IncompleteSections)
	printList(w, "Unreferenced requirements", r.UnreferencedRequirements)
	printList(w, "Issues", r.Issues)
	printList(w, "Suggestions", r.Breakdown.Suggestions)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s:\n", title)
	for _, it := range items {
		_, _ = fmt.Fprintf(w, "  - %s\n", it)
	}
}

func markdownReport(root string, r application.ScoreReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Quality report: %s\n\n", relPath(root, r.Path))
	fmt.Fprintf(&b, "- Kind: %s\n- Language: %s\n", r.Kind, r.Language)
	fmt.Fprintf(&b, "- Score: %.2f / 10\n- Threshold: %.2f\n", r.Score, r.Threshold)
	status := "fail"
	if r.Passed {
		status = "pass"
	}
	fmt.Fprintf(&b, "- Status: %s\n", status)
	if len(r.Breakdown.Lines) > 0 {
		b.WriteString("\n| Criterion | Weight | Raw | Weighted |\n|---|---|---|---|\n")
		for _, l := range r.Breakdown.Lines {
			fmt.Fprintf(&b, "| %s | %.2f | %.1f | %.2f |\n", l.Criterion, l.Weight, l.Raw, l.Weighted)
		}
	}
	for _, sec := range []struct {
		title string
		items []string
	}{
		{"Missing sections", r.Breakdown.MissingSections},
		{"Unreferenced requirements", r.UnreferencedRequirements},
		{"Issues", r.Issues},
		{"Suggestions", r.Breakdown.Suggestions},
	} {
		if len(sec.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", sec.title)
		for _, it := range sec.items {
			fmt.Fprintf(&b, "- %s\n", it)
		}
	}
	return b.String()
}

func printResult(w io.Writer, root string, res convergence.Result, dryRun bool) {
	_, _ = fmt.Fprintf(w, "%s %s\n", titleStyle.Render(relPath(root, res.Path)), dimStyle.Render(fmt.Sprintf("(%s, %s)", res.Kind, res.Language)))
	_, _ = fmt.Fprintf(w, "Score: %.2f -> %.2f   Threshold: %.2f   %s\n", res.InitialScore, res.FinalScore, res.Threshold, verdict(res.Passed()))
	_, _ = fmt.Fprintf(w, "Iterations: %d   Stopped: %s\n", res.Iterations, res.StopReason)
	if msg := res.ErrorMessage(); msg != "" {
		_, _ = fmt.Fprintf(w, "Cause: %s\n", failStyle.Render(msg))
	}
	if len(res.Applied) > 0 {
		_, _ = fmt.Fprintf(w, "\nApplied (%d):\n", len(res.Applied))
		for _, imp := range res.Applied {
			_, _ = fmt.Fprintf(w, "  - %s\n", imp)
		}
	}
	if len(res.Failed) > 0 {
		_, _ = fmt.Fprintf(w, "\nFailed (%d):\n", len(res.Failed))
		for _, f := range res.Failed {
			_, _ = fmt.Fprintf(w, "  - %s %s\n", f.Improvement, warnStyle.Render(fmt.Sprint(f.Err)))
		}
	}
	switch {
	case dryRun:
		_, _ = fmt.Fprintln(w, dimStyle.Render("\nDry run: the document was not written."))
	case res.Changed:
		_, _ = fmt.Fprintln(w, dimStyle.Render("\nDocument updated."))
	}
}

func printOutcome(w io.Writer, root, path string, out application.GateOutcome, dryRun bool) {
	if out.Result != nil {
		printResult(w, root, *out.Result, dryRun)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", titleStyle.Render(relPath(root, path)), dimStyle.Render(fmt.Sprintf("(%s)", out.Kind)))
	if ta := out.Tasks; ta != nil {
		_, _ = fmt.Fprintf(w, "Tasks: %d done, %d in progress, %d not started, %d queued (of %d)\n",
			ta.Done, ta.InProgress, ta.NotStarted, ta.Queued, ta.Total)
	}
	_, _ = fmt.Fprintf(w, "Score: %.2f / 10   Threshold: %.2f   %s\n", out.Score, out.Threshold, verdict(out.Passed))
	if out.Tasks != nil {
		printList(w, "Issues", out.Tasks.Issues)
	}
}

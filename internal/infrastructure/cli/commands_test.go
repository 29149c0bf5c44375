package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/specgate/pkg/application"
)

func TestScoreCommand(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "requirements.md", sparseRequirements)

	out, err := runCLI(t, "score", "requirements.md", "--project", root)
	if err != nil {
		t.Fatalf("score: %v\n%s", err, out)
	}
	for _, want := range []string{"requirements.md", "Score:", "Threshold: 9.00", "FAIL", "Criterion"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "score", "requirements.md", "--project", root, "--json")
	if err != nil {
		t.Fatalf("score --json: %v", err)
	}
	var report application.ScoreReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if report.Kind != "requirements" || report.Passed {
		t.Errorf("unexpected report: %+v", report)
	}

	out, err = runCLI(t, "score", "requirements.md", "--project", root, "--markdown")
	if err != nil {
		t.Fatalf("score --markdown: %v", err)
	}
	if !strings.HasPrefix(out, "# Quality report: requirements.md") || !strings.Contains(out, "| Criterion |") {
		t.Errorf("unexpected markdown:\n%s", out)
	}
}

func TestScoreCommand_Errors(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "notes.md", sparseRequirements)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"score", "requirements.md"}},
		{"unknown kind", []string{"score", "notes.md"}},
		{"bad kind flag", []string{"score", "notes.md", "--kind", "novel"}},
		{"bad language", []string{"score", "notes.md", "--kind", "requirements", "--language", "fr"}},
		{"no args", []string{"score"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, append(tt.args, "--project", root)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := ExitCode(err); code != application.ExitOperational {
				t.Errorf("exit code = %d, want %d", code, application.ExitOperational)
			}
		})
	}
}

func TestEnhanceCommand_DryRun(t *testing.T) {
	root := t.TempDir()
	path := writeDoc(t, root, "requirements.md", sparseRequirements)

	out, err := runCLI(t, "enhance", "requirements.md", "--project", root, "--dry-run")
	if err != nil {
		t.Fatalf("enhance: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Dry run") || !strings.Contains(out, "Applied") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if readDoc(t, path) != sparseRequirements {
		t.Error("dry run modified the document")
	}
}

func TestEnhanceCommand_WritesAndRecords(t *testing.T) {
	root := t.TempDir()
	path := writeDoc(t, root, "requirements.md", sparseRequirements)
	writeDoc(t, root, ".specgate/config.yaml", "backup:\n  cleanup_on_success: false\n")

	out, err := runCLI(t, "enhance", "requirements.md", "--project", root)
	if err != nil {
		t.Fatalf("enhance: %v\n%s", err, out)
	}
	if readDoc(t, path) == sparseRequirements {
		t.Fatal("document was not written")
	}
	if !strings.Contains(out, "Document updated") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = runCLI(t, "backup", "list", "--project", root)
	if err != nil {
		t.Fatalf("backup list: %v", err)
	}
	if !strings.Contains(out, "requirements.md.backup-") {
		t.Errorf("snapshot not listed:\n%s", out)
	}

	out, err = runCLI(t, "history", "--project", root)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "requirements.md") || !strings.Contains(out, "write") {
		t.Errorf("run not listed:\n%s", out)
	}
}

func TestEnhanceCommand_RejectsTasks(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "tasks.md", tasksDoc)

	out, err := runCLI(t, "enhance", "tasks.md", "--project", root)
	if err == nil {
		t.Fatalf("expected error, got:\n%s", out)
	}
	var cliErr *CLIError
	if mapped, ok := MapError(err).(*CLIError); ok {
		cliErr = mapped
	}
	if cliErr == nil || !strings.Contains(cliErr.Hint, "gate tasks") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGateCommand(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		args     []string
		wantExit int
		wantOut  []string
	}{
		{
			name:     "tasks below threshold",
			file:     "tasks.md",
			content:  tasksDoc,
			args:     []string{"gate", "tasks", "tasks.md"},
			wantExit: application.ExitFail,
			wantOut:  []string{"2 done", "Threshold: 8.00", "FAIL"},
		},
		{
			name:     "tasks pass with lowered threshold",
			file:     "tasks.md",
			content:  tasksDoc,
			args:     []string{"gate", "tasks", "tasks.md", "--threshold", "5"},
			wantExit: application.ExitPass,
			wantOut:  []string{"PASS"},
		},
		{
			name:     "validation only still prints the verdict",
			file:     "requirements.md",
			content:  sparseRequirements,
			args:     []string{"gate", "requirements", "requirements.md", "--no-enhance"},
			wantExit: application.ExitFail,
			wantOut:  []string{"Threshold: 9.00", "validation-only", "FAIL"},
		},
		{
			name:     "validation only passes a low threshold",
			file:     "requirements.md",
			content:  sparseRequirements,
			args:     []string{"gate", "requirements", "requirements.md", "--no-enhance", "--threshold", "0.5"},
			wantExit: application.ExitPass,
			wantOut:  []string{"PASS"},
		},
		{
			name:     "missing document",
			file:     "other.md",
			content:  sparseRequirements,
			args:     []string{"gate", "design", "design.md", "--no-enhance"},
			wantExit: application.ExitOperational,
		},
		{
			name:     "unknown kind subcommand",
			file:     "requirements.md",
			content:  sparseRequirements,
			args:     []string{"gate", "novel", "requirements.md"},
			wantExit: application.ExitOperational,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeDoc(t, root, tt.file, tt.content)

			out, err := runCLI(t, append(tt.args, "--project", root)...)
			if code := ExitCode(err); code != tt.wantExit {
				t.Fatalf("exit code = %d, want %d (err %v)\n%s", code, tt.wantExit, err, out)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestGateCommand_JSON(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "tasks.md", tasksDoc)

	out, err := runCLI(t, "gate", "tasks", "tasks.md", "--project", root, "--json")
	if ExitCode(err) != application.ExitFail {
		t.Fatalf("unexpected error: %v", err)
	}
	var outcome application.GateOutcome
	if err := json.Unmarshal([]byte(out), &outcome); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if outcome.Tasks == nil || outcome.Tasks.Done != 2 || outcome.ExitCode != application.ExitFail {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
}

func TestBackupCommands(t *testing.T) {
	root := t.TempDir()
	path := writeDoc(t, root, "requirements.md", sparseRequirements)
	writeDoc(t, root, ".specgate/config.yaml", "backup:\n  cleanup_on_success: false\n")

	if out, err := runCLI(t, "enhance", "requirements.md", "--project", root); err != nil {
		t.Fatalf("enhance: %v\n%s", err, out)
	}
	out, err := runCLI(t, "backup", "list", "requirements.md", "--project", root, "--json")
	if err != nil {
		t.Fatalf("backup list: %v", err)
	}
	var snaps []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &snaps); err != nil || len(snaps) != 1 {
		t.Fatalf("snapshots = %v (%v)\n%s", snaps, err, out)
	}

	out, err = runCLI(t, "backup", "restore", snaps[0].ID, "--project", root)
	if err != nil {
		t.Fatalf("restore: %v\n%s", err, out)
	}
	if readDoc(t, path) != sparseRequirements {
		t.Error("restore did not bring back the original")
	}

	if out, err := runCLI(t, "backup", "discard", snaps[0].ID, "--project", root); err != nil {
		t.Fatalf("discard: %v\n%s", err, out)
	}
	_, err = runCLI(t, "backup", "restore", snaps[0].ID, "--project", root)
	if ExitCode(err) != application.ExitOperational {
		t.Errorf("restore of discarded snapshot: %v", err)
	}

	out, err = runCLI(t, "backup", "prune", "--project", root, "--older-than", "1h")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !strings.Contains(out, "Removed 0 snapshot(s)") {
		t.Errorf("unexpected prune output:\n%s", out)
	}

	out, err = runCLI(t, "backup", "list", "--project", root)
	if err != nil || !strings.Contains(out, "No backups found.") {
		t.Errorf("list after discard: %v\n%s", err, out)
	}
}

func TestHistoryCommand_Empty(t *testing.T) {
	root := t.TempDir()
	out, err := runCLI(t, "history", "--project", root)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs recorded.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	root := t.TempDir()

	out, err := runCLI(t, "config", "init", "--project", root)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if !strings.Contains(out, ".specgate") {
		t.Errorf("unexpected output: %s", out)
	}
	if _, err := runCLI(t, "config", "init", "--project", root); ExitCode(err) != application.ExitOperational {
		t.Errorf("second init should fail, got %v", err)
	}
	if _, err := runCLI(t, "config", "init", "--project", root, "--force"); err != nil {
		t.Errorf("forced init: %v", err)
	}

	out, err = runCLI(t, "config", "show", "--project", root, "--kind", "tasks")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "kind: tasks") || !strings.Contains(out, "threshold: 8") {
		t.Errorf("unexpected settings:\n%s", out)
	}

	out, err = runCLI(t, "config", "show", "--project", root, "--kind", "requirements", "--threshold", "7", "--max-iterations", "500")
	if err != nil {
		t.Fatalf("config show with overrides: %v", err)
	}
	if !strings.Contains(out, "threshold: 7") || !strings.Contains(out, "max_iterations: 100") {
		t.Errorf("overrides not applied:\n%s", out)
	}
}

func TestConfigShow_InvalidFile(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, ".specgate/config.yaml", "thresholds:\n  requirements: 42\n")

	_, err := runCLI(t, "config", "show", "--project", root)
	if ExitCode(err) != application.ExitOperational {
		t.Fatalf("expected operational error, got %v", err)
	}
	if mapped, ok := MapError(err).(*CLIError); !ok || mapped.Message != "invalid configuration" {
		t.Errorf("unexpected mapping: %v", MapError(err))
	}
}

func TestMCPCommand_UnsupportedTransport(t *testing.T) {
	root := t.TempDir()
	_, err := runCLI(t, "mcp", "--project", root, "--transport", "carrier-pigeon")
	if err == nil || !strings.Contains(err.Error(), "unsupported transport") {
		t.Fatalf("unexpected error: %v", err)
	}
}

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/config"
	"github.com/felixgeelhaar/specgate/pkg/application"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/storage"
)

func TestCLIError(t *testing.T) {
	t.Run("Error with cause", func(t *testing.T) {
		cause := errors.New("root cause")
		e := NewCLIError("something failed", "try this", cause)
		if e.Error() != "something failed: root cause" {
			t.Fatalf("unexpected: %s", e.Error())
		}
		if e.ExitCode != application.ExitOperational {
			t.Fatalf("expected exit code 2, got %d", e.ExitCode)
		}
	})

	t.Run("Error without cause", func(t *testing.T) {
		e := NewCLIError("something failed", "try this", nil)
		if e.Error() != "something failed" {
			t.Fatalf("unexpected: %s", e.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root")
		e := NewCLIError("msg", "", cause)
		if !errors.Is(e, cause) {
			t.Fatal("errors.Is should match wrapped cause")
		}
	})

	t.Run("gate failure exits 1", func(t *testing.T) {
		e := gateFailure("requirements.md", 4.2, 9)
		if e.ExitCode != application.ExitFail || !strings.Contains(e.Error(), "4.20 < 9.00") {
			t.Fatalf("unexpected: %+v", e)
		}
	})
}

func TestMapError(t *testing.T) {
	pathErr := &storage.PathError{Op: "read", Path: "requirements.md", Kind: storage.ErrNotFound, Err: errors.New("no such file")}

	tests := []struct {
		name        string
		err         error
		wantMessage string
		wantCLI     bool
	}{
		{name: "nil returns nil"},
		{name: "not found", err: pathErr, wantMessage: "document not found", wantCLI: true},
		{name: "outside root", err: fmt.Errorf("%w: ../x", storage.ErrOutsideRoot), wantMessage: "path is outside the workspace", wantCLI: true},
		{name: "missing backup", err: storage.ErrBackupNotFound, wantMessage: "backup not found", wantCLI: true},
		{name: "busy", err: fmt.Errorf("%w: requirements.md", application.ErrBusy), wantMessage: "document is busy", wantCLI: true},
		{name: "not enhanceable", err: application.ErrNotEnhanceable, wantMessage: "tasks documents cannot be enhanced", wantCLI: true},
		{name: "unknown kind", err: application.ErrUnknownKind, wantMessage: "unknown document kind", wantCLI: true},
		{name: "unparsed kind", err: document.ErrUnknownKind, wantMessage: "unknown document kind", wantCLI: true},
		{name: "invalid config", err: fmt.Errorf("%w: bad", config.ErrInvalid), wantMessage: "invalid configuration", wantCLI: true},
		{name: "already mapped", err: gateFailure("x.md", 1, 2), wantMessage: "quality gate failed for x.md: 1.00 < 2.00", wantCLI: true},
		{name: "unmapped passthrough", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			var cliErr *CLIError
			if errors.As(got, &cliErr) != tt.wantCLI {
				t.Fatalf("CLIError = %v, want %v (%v)", cliErr != nil, tt.wantCLI, got)
			}
			if tt.wantCLI && cliErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", cliErr.Message, tt.wantMessage)
			}
			if !tt.wantCLI && got != tt.err {
				t.Errorf("unmapped error changed: %v", got)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, application.ExitPass},
		{"gate failure", gateFailure("x.md", 1, 2), application.ExitFail},
		{"wrapped gate failure", fmt.Errorf("run: %w", gateFailure("x.md", 1, 2)), application.ExitFail},
		{"operational", NewCLIError("bad", "", nil), application.ExitOperational},
		{"plain error", errors.New("boom"), application.ExitOperational},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, application.ErrBusy)
	out := buf.String()
	if !strings.Contains(out, "Error: document is busy") || !strings.Contains(out, "Hint: Another enhancement") {
		t.Errorf("unexpected report:\n%s", out)
	}

	buf.Reset()
	reportError(&buf, errors.New("boom"))
	if buf.String() != "Error: boom\n" {
		t.Errorf("unexpected report: %q", buf.String())
	}
}

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/config"
	"github.com/felixgeelhaar/specgate/pkg/application"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/storage"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with the operational exit code.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: application.ExitOperational,
	}
}

// gateFailure is returned when a document is below its threshold.
func gateFailure(path string, score, threshold float64) *CLIError {
	return &CLIError{
		Message:  fmt.Sprintf("quality gate failed for %s: %.2f < %.2f", path, score, threshold),
		Hint:     fmt.Sprintf("Run 'specgate enhance %s' or edit the document and retry", path),
		ExitCode: application.ExitFail,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NewCLIError("document not found", "Check the path; it is resolved against --project", err)
	case errors.Is(err, storage.ErrOutsideRoot):
		return NewCLIError("path is outside the workspace", "Pass --project to point at the directory containing the document", err)
	case errors.Is(err, storage.ErrPermission):
		return NewCLIError("permission denied", "Check the file permissions of the document and its directory", err)
	case errors.Is(err, storage.ErrBackupNotFound):
		return NewCLIError("backup not found", "Run 'specgate backup list' to see available snapshots", err)
	case errors.Is(err, application.ErrBusy):
		return NewCLIError("document is busy", "Another enhancement of this document is running; retry when it finishes", err)
	case errors.Is(err, application.ErrNotEnhanceable):
		return NewCLIError("tasks documents cannot be enhanced", "Use 'specgate score' or 'specgate gate tasks' instead", err)
	case errors.Is(err, application.ErrUnknownKind), errors.Is(err, document.ErrUnknownKind):
		return NewCLIError("unknown document kind", "Pass --kind requirements, design or tasks", err)
	case errors.Is(err, document.ErrUnknownLanguage):
		return NewCLIError("unknown language", "Pass --language en or zh", err)
	case errors.Is(err, config.ErrInvalid):
		return NewCLIError("invalid configuration", "Run 'specgate config show' to inspect the effective settings", err)
	}
	return err
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return application.ExitPass
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return application.ExitOperational
}

func reportError(w io.Writer, err error) {
	var cliErr *CLIError
	if errors.As(MapError(err), &cliErr) {
		_, _ = fmt.Fprintf(w, "Error: %s\n", cliErr.Error())
		if cliErr.Hint != "" {
			_, _ = fmt.Fprintf(w, "Hint: %s\n", cliErr.Hint)
		}
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}

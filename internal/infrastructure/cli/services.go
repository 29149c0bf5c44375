package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/config"
	"github.com/felixgeelhaar/specgate/internal/infrastructure/logging"
	"github.com/felixgeelhaar/specgate/internal/infrastructure/wiring"
)

// session bundles the services of one command invocation.
type session struct {
	*wiring.AppServices
	root   string
	logger *zap.Logger
}

func (s *session) Close() {
	_ = s.AppServices.Close()
	_ = s.logger.Sync()
}

func loadServices(cmd *cobra.Command) (*session, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	logger, err := buildLogger(cmd, root)
	if err != nil {
		return nil, NewCLIError("failed to create logger", "Check --log-file", err)
	}
	services, loadErr := wiring.BuildAppServices(root, overrides(cmd), logger)
	if services == nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to build services: %w", loadErr)
	}
	if loadErr != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", loadErr)
	}
	return &session{AppServices: services, root: root, logger: logger}, nil
}

// buildLogger combines the logging flags with the logging section of the
// project configuration. Flags win.
func buildLogger(cmd *cobra.Command, root string) (*zap.Logger, error) {
	verbose, file := verboseFlag, logFileFlag
	if err := config.LoadDotEnv(root); err == nil {
		if eff, err := config.NewLoader(root).Effective(""); err == nil {
			if !cmd.Flags().Changed("verbose") && eff.Logging.Verbose != nil {
				verbose = *eff.Logging.Verbose
			}
			if file == "" {
				file = eff.Logging.File
			}
		}
	}
	if file != "" && !filepath.IsAbs(file) {
		file = filepath.Join(root, file)
	}
	return logging.New(verbose, file)
}

func getProjectRoot() (string, error) {
	if projectPath != "" {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return "", fmt.Errorf("invalid project path %q: %w", projectPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("project path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("project path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

// relPath shortens path for display when it lives under root.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/watch"
	"github.com/felixgeelhaar/specgate/pkg/application"
)

var watchQuiet time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [path...]",
	Short: "Re-score documents whenever they change",
	Long: `Watch documents or directories and print a fresh score each time a
requirements, design or tasks document is saved. Directories are watched
recursively; backups, .git and node_modules are skipped.

Examples:
  specgate watch
  specgate watch .kiro/specs
  specgate watch docs/requirements.md --quiet 1s`,
	RunE: runWatchCmd,
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 0 {
		args = []string{"."}
	}
	scope := watchScope{}
	for _, a := range args {
		p := filepath.Clean(absPath(s.root, a))
		info, err := os.Stat(p)
		if err != nil {
			return MapError(fmt.Errorf("watch %s: %w", a, err))
		}
		if info.IsDir() {
			scope.dirs = append(scope.dirs, p)
		} else {
			scope.files = append(scope.files, p)
		}
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	w, err := watch.NewWatcher(watch.NewFilter(nil, nil), watchQuiet, func(paths []string) {
		for _, p := range paths {
			if scope.contains(p) {
				rescore(ctx, out, s, p)
			}
		}
	})
	if err != nil {
		return err
	}
	for _, p := range append(scope.dirs, scope.files...) {
		if err := w.Add(p); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(out, "Watching %s for changes... (Ctrl+C to stop)\n", strings.Join(args, ", "))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type watchScope struct {
	dirs  []string
	files []string
}

func (ws watchScope) contains(path string) bool {
	for _, f := range ws.files {
		if f == path {
			return true
		}
	}
	for _, d := range ws.dirs {
		if strings.HasPrefix(path, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func rescore(ctx context.Context, out io.Writer, s *session, path string) {
	stamp := dimStyle.Render(time.Now().Format("15:04:05"))
	report, err := s.Enhance.Report(ctx, application.EnhanceRequest{Path: path})
	if err != nil {
		_, _ = fmt.Fprintf(out, "%s %s %s\n", stamp, relPath(s.root, path), warnStyle.Render(MapError(err).Error()))
		return
	}
	_, _ = fmt.Fprintf(out, "%s %s %.2f / %.2f %s\n", stamp, relPath(s.root, path), report.Score, report.Threshold, verdict(report.Passed))
}

func init() {
	watchCmd.Flags().DurationVar(&watchQuiet, "quiet", 500*time.Millisecond, "How long changes must settle before re-scoring")
	RootCmd.AddCommand(watchCmd)
}

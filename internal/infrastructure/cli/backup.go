package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

var (
	backupJSON     bool
	pruneOlderThan time.Duration
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage document snapshots taken before enhancement",
}

var backupListCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List snapshots, optionally for one document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		path := ""
		if len(args) > 0 {
			path = absPath(s.root, args[0])
		}
		snaps, err := s.Backups.List(path)
		if err != nil {
			return MapError(err)
		}
		out := cmd.OutOrStdout()
		if backupJSON {
			return writeJSON(out, snaps)
		}
		if len(snaps) == 0 {
			_, _ = fmt.Fprintln(out, "No backups found.")
			return nil
		}
		columns := []table.Column{
			{Title: "ID", Width: 48},
			{Title: "Document", Width: 36},
			{Title: "Created", Width: 19},
			{Title: "Reason", Width: 16},
			{Title: "Size", Width: 8},
		}
		rows := make([]table.Row, 0, len(snaps))
		for _, sn := range snaps {
			rows = append(rows, table.Row{
				sn.ID,
				relPath(s.root, sn.OriginalPath),
				sn.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				sn.Reason,
				fmt.Sprintf("%d", sn.Size),
			})
		}
		_, _ = fmt.Fprintln(out, renderTable(columns, rows))
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a document from a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		snap, err := s.Backups.Restore(args[0])
		if err != nil {
			return MapError(err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", relPath(s.root, snap.OriginalPath), snap.ID)
		return nil
	},
}

var backupDiscardCmd = &cobra.Command{
	Use:   "discard <id>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Backups.Discard(args[0]); err != nil {
			return MapError(err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Discarded %s\n", args[0])
		return nil
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete snapshots older than the retention window",
	Long: `Delete snapshots older than --older-than. Without the flag the
backup.retention_days setting is used (7 days by default).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		retention := pruneOlderThan
		if !cmd.Flags().Changed("older-than") {
			settings, err := s.Workspace.Config.Resolve("", document.KindRequirements)
			if err != nil {
				return MapError(err)
			}
			retention = settings.Backup.Retention
		}
		if retention <= 0 {
			return NewCLIError("retention is disabled", "Pass --older-than or set backup.retention_days", nil)
		}
		n, err := s.Backups.Prune(retention)
		if err != nil {
			return MapError(err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d snapshot(s) older than %s\n", n, retention)
		return nil
	},
}

func init() {
	backupListCmd.Flags().BoolVar(&backupJSON, "json", false, "Output in JSON format")
	backupPruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "Age above which snapshots are deleted")
	backupCmd.AddCommand(backupListCmd, backupRestoreCmd, backupDiscardCmd, backupPruneCmd)
	RootCmd.AddCommand(backupCmd)
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the specgate HTTP API",
	Long: `Serve the HTTP API:

  GET    /health
  POST   /api/v1/score
  POST   /api/v1/enhance
  POST   /api/v1/gate
  GET    /api/v1/backups?path=
  POST   /api/v1/backups/{id}/restore
  DELETE /api/v1/backups/{id}
  GET    /api/v1/history?path=&limit=
  GET    /api/v1/events?types=          (Server-Sent Events)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", s.root, serveAddr)
		err = httpapi.NewServer(s.AppServices, s.logger).Serve(cmd.Context(), serveAddr)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	RootCmd.AddCommand(serveCmd)
}

// Package httpd implements the httpd command: the harvester's HTTP API
// server.
package httpd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/lead-harvester/cmd/common"
	"github.com/jonesrussell/lead-harvester/internal/api"
	"github.com/jonesrussell/lead-harvester/internal/logger"
)

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server exposing pipeline statistics, the
collected email list, and manual retrieval/extraction triggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			handler := api.NewHandler(
				deps.Snapshots,
				deps.Responses,
				deps.Emails,
				deps.NewRetriever(),
				deps.NewExtractor(),
				deps.DB,
				deps.Config.Service.Name,
				version(cmd),
				deps.Logger,
			)

			server := api.NewServer(handler, api.ServerConfig{
				Port:  deps.Config.Service.Port,
				Debug: deps.Config.Service.Debug,
			}, deps.Logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			deps.Logger.Info("Shutting down HTTP server")
			if err := server.Shutdown(context.Background()); err != nil {
				deps.Logger.Error("Server shutdown failed", logger.Error(err))
				return err
			}

			return <-errCh
		},
	}
}

// version reads the root command's version, falling back to dev builds.
func version(cmd *cobra.Command) string {
	if v := cmd.Root().Version; v != "" {
		return v
	}
	return "dev"
}

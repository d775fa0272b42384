// Package worker implements the worker command: the continuous
// retrieve-and-extract background loop.
package worker

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/lead-harvester/cmd/common"
	"github.com/jonesrussell/lead-harvester/internal/worker"
)

// Command returns the worker command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the retrieval and extraction loop",
		Long: `Run the background worker that continuously retrieves pending
snapshot payloads and extracts email addresses from stored responses.

The loop backs off to the idle interval when a pass finds no work and
stops cleanly on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := worker.New(deps.NewRetriever(), deps.NewExtractor(), worker.Config{
				IdleInterval: deps.Config.Harvester.IdleInterval,
				BusyInterval: deps.Config.Harvester.BusyInterval,
			}, deps.Logger)

			w.Start(ctx)
			<-ctx.Done()
			w.Stop()

			return nil
		},
	}
}

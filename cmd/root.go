// Package cmd implements the command-line interface for the lead
// harvester. It provides the root command and subcommands for submitting
// queries, retrieving snapshot payloads, extracting emails, and running
// the long-lived worker and HTTP server.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/lead-harvester/cmd/extract"
	"github.com/jonesrussell/lead-harvester/cmd/httpd"
	"github.com/jonesrussell/lead-harvester/cmd/migrate"
	"github.com/jonesrussell/lead-harvester/cmd/retrieve"
	"github.com/jonesrussell/lead-harvester/cmd/submit"
	"github.com/jonesrussell/lead-harvester/cmd/worker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "lead-harvester",
	Short: "Collect search results and harvest email addresses from them",
	Long: `lead-harvester drives a three-stage lead collection lifecycle:
submit search queries to a collection service in deduplicated batches,
retrieve the asynchronously produced result payloads, and extract email
addresses from them into a deduplicated store.

Every stage is idempotent and safe to re-run; interrupted work is picked
up by the next pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = Version

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lead-harvester version %s\n", Version)
		},
	})

	rootCmd.AddCommand(migrate.Command())
	rootCmd.AddCommand(submit.Command())
	rootCmd.AddCommand(retrieve.Command())
	rootCmd.AddCommand(extract.Command())
	rootCmd.AddCommand(worker.Command())
	rootCmd.AddCommand(httpd.Command())

	return rootCmd.ExecuteContext(context.Background())
}

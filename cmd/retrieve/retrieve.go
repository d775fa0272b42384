// Package retrieve implements the retrieve command: a single retrieval
// pass over pending snapshots.
package retrieve

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/lead-harvester/cmd/common"
)

// Command returns the retrieve command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "retrieve",
		Short: "Fetch and store pending snapshot payloads",
		Long: `Run one retrieval pass: fetch the payload of every pending
snapshot, store the valid ones, and leave still-processing or erroneous
snapshots for a later pass. Safe to re-run at any time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			stats, runErr := deps.NewRetriever().Run(cmd.Context())
			if stats != nil {
				if data, marshalErr := json.MarshalIndent(stats, "", "  "); marshalErr == nil {
					fmt.Println(string(data))
				}
			}

			return runErr
		},
	}
}

// Package extract implements the extract command: a single extraction
// pass over stored responses.
package extract

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/lead-harvester/cmd/common"
)

// Command returns the extract command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract email addresses from stored responses",
		Long: `Run one extraction pass: scan every stored response that has
not been extracted yet, record each distinct email address once, and mark
the response done. Safe to re-run at any time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			stats, runErr := deps.NewExtractor().Run(cmd.Context())
			if stats != nil {
				if data, marshalErr := json.MarshalIndent(stats, "", "  "); marshalErr == nil {
					fmt.Println(string(data))
				}
			}

			return runErr
		},
	}
}

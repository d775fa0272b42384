// Package submit implements the submit command: deduplicate queries
// against the submission history and send the new ones to the collection
// service.
package submit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/lead-harvester/cmd/common"
	"github.com/jonesrussell/lead-harvester/internal/logger"
	"github.com/jonesrussell/lead-harvester/internal/pipeline"
)

// Command returns the submit command.
func Command() *cobra.Command {
	var (
		queriesFile string
		dryRun      bool
		wait        bool
	)

	cmd := &cobra.Command{
		Use:   "submit [queries...]",
		Short: "Submit search queries to the collection service",
		Long: `Submit search queries to the collection service in batches.

Queries are read from positional arguments and/or --file (one query per
line, blank lines and # comments skipped). Each query is checked against
the submission history first: queries submitted by any earlier run are
reported and skipped, so resubmitting the same input is free.

With --dry-run only the deduplication report is printed. With --wait the
command polls until the collection service has processed the data, then
runs retrieval and extraction before exiting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := collectQueries(args, queriesFile)
			if err != nil {
				return err
			}
			if len(queries) == 0 {
				return fmt.Errorf("no queries given: pass them as arguments or via --file")
			}

			return run(cmd.Context(), queries, dryRun, wait)
		},
	}

	cmd.Flags().StringVarP(&queriesFile, "file", "f", "", "file with one query per line")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report deduplication without submitting")
	cmd.Flags().BoolVar(&wait, "wait", false, "poll for processed data, then retrieve and extract")

	return cmd
}

func run(ctx context.Context, queries []string, dryRun, wait bool) error {
	deps, err := common.Build()
	if err != nil {
		return err
	}
	defer deps.Close()

	submitted, err := deps.Snapshots.ListSubmittedQueries(ctx)
	if err != nil {
		return fmt.Errorf("load submission history: %w", err)
	}

	report := pipeline.Dedup(queries, submitted)
	printJSON(report)

	deps.Logger.Info("Deduplication complete",
		logger.Int("total", report.Total),
		logger.Int("new", report.NewCount),
		logger.Int("existing", report.ExistingCount),
	)

	if dryRun {
		return nil
	}
	if report.NewCount == 0 {
		deps.Logger.Info("All queries already submitted, nothing to do")
		return nil
	}

	stats, err := deps.NewSubmitter().Submit(ctx, report.NewQueries)
	if stats != nil {
		printJSON(stats)
	}
	if err != nil {
		return fmt.Errorf("submit queries: %w", err)
	}
	if stats.FailedBatches > 0 && stats.SuccessfulSnapshots == 0 {
		return fmt.Errorf("all %d batches failed", stats.TotalBatches)
	}

	if !wait {
		return nil
	}

	return harvest(ctx, deps)
}

// harvest finishes the lifecycle in-process: wait for the collection
// service, retrieve payloads, extract emails. Poll exhaustion is not an
// error; retrieval simply skips snapshots that are still processing.
func harvest(ctx context.Context, deps *common.Deps) error {
	if _, err := deps.NewPoller().Wait(ctx); err != nil {
		return fmt.Errorf("poll for data: %w", err)
	}

	retrieveStats, err := deps.NewRetriever().Run(ctx)
	if retrieveStats != nil {
		printJSON(retrieveStats)
	}
	if err != nil {
		return fmt.Errorf("retrieve snapshots: %w", err)
	}

	extractStats, err := deps.NewExtractor().Run(ctx)
	if extractStats != nil {
		printJSON(extractStats)
	}
	if err != nil {
		return fmt.Errorf("extract emails: %w", err)
	}

	return nil
}

// collectQueries merges positional arguments with the optional query file.
func collectQueries(args []string, path string) ([]string, error) {
	queries := make([]string, 0, len(args))
	queries = append(queries, args...)

	if path == "" {
		return queries, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open queries file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read queries file: %w", err)
	}

	return queries, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(data))
}

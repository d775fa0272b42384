package pipeline

import "strings"

// DedupReport is the result of deduplicating an input batch of queries
// against the persisted submission history. It is a pure report: nothing is
// written, so an operator can inspect it before committing to submission.
type DedupReport struct {
	// Total is the number of raw input queries.
	Total int `json:"total"`

	// DuplicatesInInput counts entries dropped because an earlier entry in
	// the same input normalized to the same query (empty entries included).
	DuplicatesInInput int `json:"duplicates_in_input"`

	// Unique is the number of distinct queries in the input.
	Unique int `json:"unique"`

	// NewCount and ExistingCount partition Unique.
	NewCount      int `json:"new_count"`
	ExistingCount int `json:"existing_count"`

	// NewQueries are unique queries absent from the submission history, in
	// input order with original casing preserved.
	NewQueries []string `json:"new_queries"`

	// ExistingQueries are unique queries already present in the history.
	ExistingQueries []string `json:"existing_queries"`
}

// normalizeQuery produces the case-insensitive identity of a query.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Dedup deduplicates input queries and partitions them into new versus
// already-submitted. Identity is trimmed, case-insensitive text; the first
// occurrence wins and original casing is preserved for submission.
// submittedQueries must already be normalized (as returned by
// SnapshotStore.ListSubmittedQueries).
func Dedup(input []string, submittedQueries []string) DedupReport {
	submitted := make(map[string]struct{}, len(submittedQueries))
	for _, q := range submittedQueries {
		submitted[q] = struct{}{}
	}

	seen := make(map[string]struct{}, len(input))
	unique := make([]string, 0, len(input))
	for _, query := range input {
		norm := normalizeQuery(query)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		unique = append(unique, query)
	}

	report := DedupReport{
		Total:             len(input),
		Unique:            len(unique),
		DuplicatesInInput: len(input) - len(unique),
		NewQueries:        []string{},
		ExistingQueries:   []string{},
	}

	for _, query := range unique {
		if _, exists := submitted[normalizeQuery(query)]; exists {
			report.ExistingQueries = append(report.ExistingQueries, query)
		} else {
			report.NewQueries = append(report.NewQueries, query)
		}
	}

	report.NewCount = len(report.NewQueries)
	report.ExistingCount = len(report.ExistingQueries)

	return report
}

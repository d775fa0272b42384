package pipeline

import (
	"context"
	"errors"
	"regexp"

	"github.com/jonesrussell/lead-harvester/internal/domain"
	"github.com/jonesrussell/lead-harvester/internal/logger"
)

// DefaultExtractPageSize is the number of unextracted responses fetched per
// page.
const DefaultExtractPageSize = 20

// emailPattern matches RFC-5322-like local-part/domain syntax. Matching is
// case-sensitive; duplicates within one payload are collapsed.
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// ExtractEmails returns the distinct email addresses found in a raw
// payload, in order of first occurrence.
func ExtractEmails(payload []byte) []string {
	matches := emailPattern.FindAllString(string(payload), -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	distinct := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		distinct = append(distinct, m)
	}

	return distinct
}

// ExtractStats aggregates one extraction pass across all pages.
type ExtractStats struct {
	// Rows tallies response rows: Successful counts rows marked extracted,
	// Failed counts rows whose mark failed (they stay eligible for the
	// next pass).
	Rows Counters `json:"rows"`

	// NewEmails counts addresses persisted for the first time.
	NewEmails int `json:"new_emails"`

	// DuplicateEmails counts addresses the store already knew globally.
	DuplicateEmails int `json:"duplicate_emails"`
}

// ExtractorConfig holds extraction tuning.
type ExtractorConfig struct {
	PageSize int
}

// Extractor scans persisted responses for email addresses and records each
// distinct address once globally. Every scanned response is marked
// extracted exactly once; re-processing a response whose mark failed is
// safe because email persistence is idempotent via the duplicate path.
type Extractor struct {
	responses ResponseStore
	emails    EmailStore
	pageSize  int
	log       logger.Logger
}

// NewExtractor creates a new extraction engine.
func NewExtractor(responses ResponseStore, emails EmailStore, cfg ExtractorConfig, log logger.Logger) *Extractor {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultExtractPageSize
	}

	return &Extractor{
		responses: responses,
		emails:    emails,
		pageSize:  cfg.PageSize,
		log:       log,
	}
}

// Run processes unextracted responses in pages, always re-querying from
// offset zero: marked rows drop out of the next page, so a shrinking result
// set never skips rows. The pass ends when a page comes back empty, or when
// an entire page fails to shrink (every mark failed) — those rows are left
// for the next pass instead of spinning on them.
func (e *Extractor) Run(ctx context.Context) (*ExtractStats, error) {
	stats := &ExtractStats{}

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}

		page, err := e.responses.ListUnextracted(ctx, e.pageSize)
		if err != nil {
			return stats, err
		}
		if len(page) == 0 {
			break
		}

		markedBefore := stats.Rows.Successful
		for i := range page {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Rows.Record(e.processResponse(ctx, &page[i], stats))
		}

		if stats.Rows.Successful == markedBefore {
			// Nothing in this page shrank the result set; retrying now
			// would loop over the same rows.
			break
		}
	}

	e.log.Info("Extraction pass complete",
		logger.Int("rows", stats.Rows.Total),
		logger.Int("marked", stats.Rows.Successful),
		logger.Int("failed", stats.Rows.Failed),
		logger.Int("new_emails", stats.NewEmails),
		logger.Int("duplicate_emails", stats.DuplicateEmails),
	)

	return stats, nil
}

func (e *Extractor) processResponse(ctx context.Context, response *domain.Response, stats *ExtractStats) Outcome {
	for _, email := range ExtractEmails(response.Payload) {
		saveErr := e.emails.Create(ctx, email)
		switch {
		case saveErr == nil:
			stats.NewEmails++
		case errors.Is(saveErr, domain.ErrAlreadyExists):
			stats.DuplicateEmails++
		default:
			e.log.Error("Failed to persist email",
				logger.String("snapshot_id", response.SnapshotID),
				logger.Error(saveErr),
			)
		}
	}

	// The response is marked extracted whether or not any address was new:
	// the scan itself is the unit of work.
	if markErr := e.responses.MarkExtracted(ctx, response.SnapshotID); markErr != nil {
		e.log.Error("Failed to mark response extracted",
			logger.String("snapshot_id", response.SnapshotID),
			logger.Error(markErr),
		)
		return OutcomeFailed
	}

	return OutcomeSuccess
}

package pipeline

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/lead-harvester/internal/domain"
	"github.com/jonesrussell/lead-harvester/internal/logger"
)

// DefaultBatchSize is the number of queries per collection-service batch.
const DefaultBatchSize = 2

// DefaultSubmitInterval paces consecutive batch submissions.
const DefaultSubmitInterval = 2 * time.Second

// SubmitStats aggregates one submission pass.
type SubmitStats struct {
	TotalQueries        int `json:"total_queries"`
	TotalBatches        int `json:"total_batches"`
	SuccessfulSnapshots int `json:"successful_snapshots"`
	FailedBatches       int `json:"failed_batches"`

	// SnapshotQueries maps each accepted snapshot identifier to the queries
	// it covers.
	SnapshotQueries map[string][]string `json:"snapshot_queries"`
}

// SubmitterConfig holds submission tuning.
type SubmitterConfig struct {
	// BatchSize is the maximum queries per batch.
	BatchSize int

	// Interval paces consecutive submissions; the first batch is not
	// delayed.
	Interval time.Duration
}

// Submitter groups queries into batches, submits each to the collection
// service, and records one pending snapshot per accepted batch. A failed
// batch is simply not represented as a snapshot: its queries stay absent
// from the submission history, so a future run resubmits them.
type Submitter struct {
	client    CollectionClient
	snapshots SnapshotStore
	limiter   *rate.Limiter
	batchSize int
	log       logger.Logger
}

// NewSubmitter creates a new batch submitter.
func NewSubmitter(client CollectionClient, snapshots SnapshotStore, cfg SubmitterConfig, log logger.Logger) *Submitter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSubmitInterval
	}

	return &Submitter{
		client:    client,
		snapshots: snapshots,
		limiter:   rate.NewLimiter(rate.Every(cfg.Interval), 1),
		batchSize: cfg.BatchSize,
		log:       log,
	}
}

// Submit partitions queries into consecutive batches of at most the
// configured size and submits each one. Per-batch failures are counted and
// never abort the pass; cancellation is honored between batches and leaves
// already-accepted snapshots recorded.
func (s *Submitter) Submit(ctx context.Context, queries []string) (*SubmitStats, error) {
	stats := &SubmitStats{
		TotalQueries:    len(queries),
		SnapshotQueries: map[string][]string{},
	}

	if len(queries) == 0 {
		return stats, nil
	}

	s.log.Info("Starting submission pass",
		logger.Int("queries", len(queries)),
		logger.Int("batch_size", s.batchSize),
	)

	for start := 0; start < len(queries); start += s.batchSize {
		if waitErr := s.limiter.Wait(ctx); waitErr != nil {
			return stats, waitErr
		}

		end := start + s.batchSize
		if end > len(queries) {
			end = len(queries)
		}
		batch := queries[start:end]
		stats.TotalBatches++

		snapshotID, err := s.client.Trigger(ctx, batch)
		if err != nil {
			stats.FailedBatches++
			s.log.Warn("Batch submission failed",
				logger.Int("batch", stats.TotalBatches),
				logger.Strings("queries", batch),
				logger.Error(err),
			)
			continue
		}

		snapshot := &domain.Snapshot{SnapshotID: snapshotID, Queries: batch}
		if saveErr := s.snapshots.Create(ctx, snapshot); saveErr != nil {
			stats.FailedBatches++
			s.log.Error("Failed to record snapshot",
				logger.String("snapshot_id", snapshotID),
				logger.Error(saveErr),
			)
			continue
		}

		stats.SuccessfulSnapshots++
		stats.SnapshotQueries[snapshotID] = batch
	}

	s.log.Info("Submission pass complete",
		logger.Int("batches", stats.TotalBatches),
		logger.Int("snapshots", stats.SuccessfulSnapshots),
		logger.Int("failed_batches", stats.FailedBatches),
	)

	return stats, nil
}

package pipeline

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/lead-harvester/internal/domain"
	"github.com/jonesrussell/lead-harvester/internal/logger"
)

// DefaultRetrieveInterval paces per-snapshot retrieval calls.
const DefaultRetrieveInterval = 500 * time.Millisecond

// RetrieverConfig holds retrieval tuning.
type RetrieverConfig struct {
	// Interval paces consecutive snapshot retrievals.
	Interval time.Duration
}

// Retriever fetches payloads for unprocessed snapshots, classifies them,
// and persists the valid ones exactly once.
//
// The invariant it maintains: a snapshot is marked processed if and only if
// its payload is durably stored, either by this pass or by an earlier one
// (duplicate-rejected write). Still-processing and invalid-error payloads
// leave the snapshot untouched for a later pass.
type Retriever struct {
	client    CollectionClient
	snapshots SnapshotStore
	responses ResponseStore
	limiter   *rate.Limiter
	log       logger.Logger
}

// NewRetriever creates a new retrieval coordinator.
func NewRetriever(
	client CollectionClient,
	snapshots SnapshotStore,
	responses ResponseStore,
	cfg RetrieverConfig,
	log logger.Logger,
) *Retriever {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRetrieveInterval
	}

	return &Retriever{
		client:    client,
		snapshots: snapshots,
		responses: responses,
		limiter:   rate.NewLimiter(rate.Every(cfg.Interval), 1),
		log:       log,
	}
}

// Run processes every unprocessed snapshot once. Per-snapshot failures are
// counted and never abort the pass; cancellation is honored between
// snapshots, leaving in-flight items in their last durable state.
func (r *Retriever) Run(ctx context.Context) (*Counters, error) {
	snapshots, err := r.snapshots.ListUnprocessed(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Counters{}
	if len(snapshots) == 0 {
		return stats, nil
	}

	r.log.Info("Starting retrieval pass", logger.Int("snapshots", len(snapshots)))

	for i := range snapshots {
		if waitErr := r.limiter.Wait(ctx); waitErr != nil {
			return stats, waitErr
		}

		stats.Record(r.processSnapshot(ctx, &snapshots[i]))
	}

	r.log.Info("Retrieval pass complete",
		logger.Int("total", stats.Total),
		logger.Int("successful", stats.Successful),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("skipped", stats.Skipped),
		logger.Int("invalid", stats.Invalid),
		logger.Int("failed", stats.Failed),
	)

	return stats, nil
}

func (r *Retriever) processSnapshot(ctx context.Context, snapshot *domain.Snapshot) Outcome {
	payload, err := r.client.Fetch(ctx, snapshot.SnapshotID)
	if err != nil {
		r.log.Warn("Snapshot retrieval failed",
			logger.String("snapshot_id", snapshot.SnapshotID),
			logger.Error(err),
		)
		return OutcomeFailed
	}

	verdict := Classify(payload)
	if !verdict.Valid() {
		r.log.Info("Snapshot not ready",
			logger.String("snapshot_id", snapshot.SnapshotID),
			logger.String("classification", verdict.Classification.String()),
			logger.String("reason", verdict.Reason),
		)
		return OutcomeInvalid
	}

	if IsEmptyPayload(payload) {
		r.log.Warn("Snapshot payload empty", logger.String("snapshot_id", snapshot.SnapshotID))
		return OutcomeSkipped
	}

	saveErr := r.responses.Create(ctx, snapshot.SnapshotID, payload)
	switch {
	case saveErr == nil:
		r.markProcessed(ctx, snapshot.SnapshotID)
		return OutcomeSuccess

	case errors.Is(saveErr, domain.ErrAlreadyExists):
		// The payload is already safely stored by an earlier run; the
		// snapshot is complete.
		r.markProcessed(ctx, snapshot.SnapshotID)
		return OutcomeDuplicate

	default:
		r.log.Error("Failed to persist response",
			logger.String("snapshot_id", snapshot.SnapshotID),
			logger.Error(saveErr),
		)
		return OutcomeFailed
	}
}

// markProcessed flips the snapshot flag once its payload is durably stored.
// A mark failure is logged but not fatal: the next pass hits the duplicate
// path and marks again.
func (r *Retriever) markProcessed(ctx context.Context, snapshotID string) {
	if err := r.snapshots.MarkProcessed(ctx, snapshotID); err != nil {
		r.log.Error("Failed to mark snapshot processed",
			logger.String("snapshot_id", snapshotID),
			logger.Error(err),
		)
	}
}

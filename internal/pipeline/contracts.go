// Package pipeline implements the three-stage snapshot lifecycle: batch
// submission of deduplicated queries, validation-aware retrieval of raw
// payloads, and idempotent email extraction.
//
// Components depend on the collection service and the store through the
// narrow interfaces below; the store's uniqueness constraints are the
// serialization point, so concurrent passes are safe.
package pipeline

import (
	"context"
	"encoding/json"

	"github.com/jonesrussell/lead-harvester/internal/domain"
)

// CollectionClient submits query batches and retrieves snapshot payloads.
type CollectionClient interface {
	// Trigger submits a batch of keywords and returns the snapshot
	// identifier assigned by the service.
	Trigger(ctx context.Context, keywords []string) (string, error)

	// Fetch retrieves the raw payload for a snapshot. The payload may be a
	// still-processing or error envelope; classification is the caller's
	// job.
	Fetch(ctx context.Context, snapshotID string) (json.RawMessage, error)
}

// SnapshotStore persists submitted work units.
type SnapshotStore interface {
	Create(ctx context.Context, snapshot *domain.Snapshot) error
	ListUnprocessed(ctx context.Context) ([]domain.Snapshot, error)
	MarkProcessed(ctx context.Context, snapshotID string) error
	ListSubmittedQueries(ctx context.Context) ([]string, error)
}

// ResponseStore persists retrieved payloads. Create must return
// domain.ErrAlreadyExists on a duplicate snapshot identifier; that
// distinction is load-bearing for retrieval idempotence.
type ResponseStore interface {
	Create(ctx context.Context, snapshotID string, payload json.RawMessage) error
	ListUnextracted(ctx context.Context, limit int) ([]domain.Response, error)
	CountUnextracted(ctx context.Context) (int64, error)
	MarkExtracted(ctx context.Context, snapshotID string) error
}

// EmailStore persists extracted addresses. Create must return
// domain.ErrAlreadyExists for a globally known address.
type EmailStore interface {
	Create(ctx context.Context, email string) error
}

package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/lead-harvester/internal/domain"
)

// SnapshotRepository handles database operations for snapshots.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a new snapshot. Returns domain.ErrAlreadyExists if a
// snapshot with the same identifier is already recorded.
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *domain.Snapshot) error {
	query := `
		INSERT INTO snapshots (snapshot_id, queries, processed)
		VALUES ($1, $2, false)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		snapshot.SnapshotID,
		pq.Array(snapshot.Queries),
	).Scan(&snapshot.CreatedAt)
	if err != nil {
		if translated := translateInsertError(err); translated == domain.ErrAlreadyExists {
			return translated
		}
		return fmt.Errorf("create snapshot: %w", err)
	}

	return nil
}

// ListUnprocessed retrieves all snapshots whose payload has not yet been
// retrieved and stored, oldest first.
func (r *SnapshotRepository) ListUnprocessed(ctx context.Context) ([]domain.Snapshot, error) {
	query := `
		SELECT snapshot_id, queries, processed, created_at
		FROM snapshots
		WHERE processed = false
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []domain.Snapshot{}
	for rows.Next() {
		var s domain.Snapshot
		var queries pq.StringArray
		if scanErr := rows.Scan(&s.SnapshotID, &queries, &s.Processed, &s.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", scanErr)
		}
		s.Queries = []string(queries)
		snapshots = append(snapshots, s)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("snapshot rows: %w", rowsErr)
	}

	return snapshots, nil
}

// MarkProcessed flips a snapshot's processed flag to true.
func (r *SnapshotRepository) MarkProcessed(ctx context.Context, snapshotID string) error {
	query := `UPDATE snapshots SET processed = true WHERE snapshot_id = $1`

	result, err := r.db.ExecContext(ctx, query, snapshotID)
	if err != nil {
		return fmt.Errorf("mark snapshot processed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ListSubmittedQueries returns every query ever submitted, flattened across
// snapshots, lower-cased and trimmed for case-insensitive comparison.
func (r *SnapshotRepository) ListSubmittedQueries(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT lower(trim(q))
		FROM snapshots, unnest(queries) AS q
		WHERE trim(q) <> ''
	`

	var queries []string
	if err := r.db.SelectContext(ctx, &queries, query); err != nil {
		return nil, fmt.Errorf("list submitted queries: %w", err)
	}

	return queries, nil
}

// Count returns the total number of snapshots and how many are processed.
func (r *SnapshotRepository) Count(ctx context.Context) (total, processed int64, err error) {
	query := `
		SELECT count(*), count(*) FILTER (WHERE processed)
		FROM snapshots
	`

	if err = r.db.QueryRowContext(ctx, query).Scan(&total, &processed); err != nil {
		return 0, 0, fmt.Errorf("count snapshots: %w", err)
	}

	return total, processed, nil
}

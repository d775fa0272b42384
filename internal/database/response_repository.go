package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/lead-harvester/internal/domain"
)

// ResponseRepository handles database operations for retrieved snapshot
// payloads.
type ResponseRepository struct {
	db *sqlx.DB
}

// NewResponseRepository creates a new response repository.
func NewResponseRepository(db *sqlx.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Create persists the raw payload for a snapshot. The snapshot identifier is
// the primary key, so a second insert for the same snapshot returns
// domain.ErrAlreadyExists.
func (r *ResponseRepository) Create(ctx context.Context, snapshotID string, payload json.RawMessage) error {
	query := `
		INSERT INTO responses (snapshot_id, payload, extracted)
		VALUES ($1, $2, false)
	`

	_, err := r.db.ExecContext(ctx, query, snapshotID, []byte(payload))
	if err != nil {
		if translated := translateInsertError(err); translated == domain.ErrAlreadyExists {
			return translated
		}
		return fmt.Errorf("create response: %w", err)
	}

	return nil
}

// ListUnextracted retrieves up to limit responses whose emails have not been
// extracted yet, oldest first. Callers page by re-querying after marking
// rows extracted: processed rows drop out of the result, so the offset is
// always zero.
func (r *ResponseRepository) ListUnextracted(ctx context.Context, limit int) ([]domain.Response, error) {
	query := `
		SELECT snapshot_id, payload, extracted, created_at
		FROM responses
		WHERE extracted = false
		ORDER BY created_at
		LIMIT $1
	`

	responses := []domain.Response{}
	if err := r.db.SelectContext(ctx, &responses, query, limit); err != nil {
		return nil, fmt.Errorf("list unextracted responses: %w", err)
	}

	return responses, nil
}

// CountUnextracted returns the number of responses still awaiting
// extraction.
func (r *ResponseRepository) CountUnextracted(ctx context.Context) (int64, error) {
	query := `SELECT count(*) FROM responses WHERE extracted = false`

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count unextracted responses: %w", err)
	}

	return count, nil
}

// MarkExtracted flips a response's extracted flag to true.
func (r *ResponseRepository) MarkExtracted(ctx context.Context, snapshotID string) error {
	query := `UPDATE responses SET extracted = true WHERE snapshot_id = $1`

	result, err := r.db.ExecContext(ctx, query, snapshotID)
	if err != nil {
		return fmt.Errorf("mark response extracted: %w", err)
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

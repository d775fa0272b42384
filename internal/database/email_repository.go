package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/lead-harvester/internal/domain"
)

// EmailRepository handles database operations for extracted email addresses.
type EmailRepository struct {
	db *sqlx.DB
}

// NewEmailRepository creates a new email repository.
func NewEmailRepository(db *sqlx.DB) *EmailRepository {
	return &EmailRepository{db: db}
}

// Create persists a single email address. The address is the primary key;
// inserting a known address returns domain.ErrAlreadyExists.
func (r *EmailRepository) Create(ctx context.Context, email string) error {
	query := `INSERT INTO emails (email) VALUES ($1)`

	_, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		if translated := translateInsertError(err); translated == domain.ErrAlreadyExists {
			return translated
		}
		return fmt.Errorf("create email: %w", err)
	}

	return nil
}

// List retrieves extracted emails, newest first, optionally bounded by
// creation time. A nil bound is open-ended; the end bound is exclusive.
func (r *EmailRepository) List(ctx context.Context, start, end *time.Time) ([]domain.ExtractedEmail, error) {
	query := `
		SELECT email, created_at
		FROM emails
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at < $2)
		ORDER BY created_at DESC
	`

	emails := []domain.ExtractedEmail{}
	if err := r.db.SelectContext(ctx, &emails, query, start, end); err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}

	return emails, nil
}

// Count returns the total number of extracted emails.
func (r *EmailRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT count(*) FROM emails`

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count emails: %w", err)
	}

	return count, nil
}

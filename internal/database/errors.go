package database

import (
	"errors"

	"github.com/lib/pq"

	"github.com/jonesrussell/lead-harvester/internal/domain"
)

// pq error code for unique constraint violations.
const uniqueViolationCode = "23505"

// translateInsertError maps uniqueness violations to domain.ErrAlreadyExists
// so callers can tell "already done" apart from a genuine write failure.
func translateInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return domain.ErrAlreadyExists
	}
	return err
}

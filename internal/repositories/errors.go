package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when an insert hits a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrStateConflict is returned when a conditional update matched no row
	// because the record is no longer in the expected state.
	ErrStateConflict = errors.New("state conflict")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == pqUniqueViolation
}

// isForeignKeyViolation reports a reference to a row that does not exist,
// e.g. an attendance record for an unknown user.
func isForeignKeyViolation(err error) bool {
	return pqCode(err) == pqForeignKeyViolation
}

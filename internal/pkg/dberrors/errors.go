package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes we branch on
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint. An empty constraintName matches any unique violation.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	return hasCode(err, uniqueViolation, constraintName)
}

// IsForeignKeyViolation reports a foreign key violation, optionally for one constraint
func IsForeignKeyViolation(err error, constraintName string) bool {
	return hasCode(err, foreignKeyViolation, constraintName)
}

// IsCheckViolation reports a CHECK constraint violation, optionally for one constraint
func IsCheckViolation(err error, constraintName string) bool {
	return hasCode(err, checkViolation, constraintName)
}

func hasCode(err error, code, constraintName string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraintName == "" || pgErr.ConstraintName == constraintName
}

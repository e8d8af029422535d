package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintHelpers(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "enrollments_class_id_fkey"}

	assert.True(t, IsDuplicateConstraintError(dup, "users_email_key"))
	assert.True(t, IsDuplicateConstraintError(dup, ""))
	assert.False(t, IsDuplicateConstraintError(dup, "staff_email_key"))
	assert.True(t, IsForeignKeyViolation(fk, ""))
	assert.False(t, IsCheckViolation(fk, ""))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), ""))
}

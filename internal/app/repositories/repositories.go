package repositories

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/db"
	"github.com/fitdesk/gymadmin/internal/pkg/helpers"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	ClassRepository      *ClassRepository
	StaffRepository      *StaffRepository
	EnrollmentRepository *EnrollmentRepository
	VideoRepository      *VideoRepository
}

// NewRepositories initializes all repositories
func NewRepositories(conn db.DBTX) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(conn),
		TokenRepository:      NewTokenRepository(conn),
		ClassRepository:      NewClassRepository(conn),
		StaffRepository:      NewStaffRepository(conn),
		EnrollmentRepository: NewEnrollmentRepository(conn),
		VideoRepository:      NewVideoRepository(conn),
	}
}

func newStatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// paginate applies ORDER BY, LIMIT and OFFSET. Sort fields are looked up in
// columns so user input never reaches the SQL text.
func paginate(q squirrel.SelectBuilder, params models.ListParams, columns map[string]string, defaultColumn string) squirrel.SelectBuilder {
	column, ok := columns[params.SortBy]
	if !ok {
		column = defaultColumn
	}
	order := "DESC"
	if params.SortOrder == "ASC" {
		order = "ASC"
	}

	offset, limit := helpers.CalculateOffsetLimit(params.Page, params.Size)
	return q.OrderBy(fmt.Sprintf("%s %s", column, order), "id "+order).
		Limit(limit).
		Offset(offset)
}

func likePattern(s string) string {
	return "%" + s + "%"
}

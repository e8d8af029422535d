package repositories

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/gymadmin/internal/app/models"
)

func TestPaginateUsesWhitelistedColumns(t *testing.T) {
	sb := newStatementBuilder()
	q := paginate(sb.Select("id").From("users"), models.ListParams{Page: 3, Size: 20, SortBy: "email", SortOrder: "ASC"}, userSortColumns, "created_at")

	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY email ASC, id ASC")
	assert.Contains(t, sql, "LIMIT 20 OFFSET 40")
}

func TestPaginateRejectsUnknownSort(t *testing.T) {
	sb := newStatementBuilder()
	q := paginate(sb.Select("id").From("users"), models.ListParams{Page: 1, Size: 10, SortBy: "password; DROP TABLE users"}, userSortColumns, "created_at")

	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.NotContains(t, sql, "DROP")
}

func TestClassWhere(t *testing.T) {
	sb := newStatementBuilder()
	where := classWhere(models.ClassFilter{Search: " yoga ", InstructorID: 4, Status: models.ClassStatusScheduled})

	sql, args, err := sb.Select("c.id").From("classes c").Where(where).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "c.name ILIKE $1")
	assert.Contains(t, sql, "c.instructor_id = $2")
	assert.Equal(t, []interface{}{"%yoga%", int64(4), models.ClassStatusScheduled}, args)
}

func TestStaffWhereSkillStatus(t *testing.T) {
	sb := newStatementBuilder()
	sql, args, err := sb.Select("s.id").From("staff s").Where(staffWhere(models.StaffFilter{SkillStatus: models.SkillPending})).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.Contains(sql, "EXISTS (SELECT 1 FROM staff_skills k"))
	assert.Equal(t, []interface{}{models.SkillPending}, args)
}

func TestEnrollmentWhereEmpty(t *testing.T) {
	sb := newStatementBuilder()
	sql, args, err := sb.Select("e.id").From("enrollments e").Where(enrollmentWhere(models.EnrollmentFilter{})).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "e.class_id")
	assert.Empty(t, args)
}

func TestHashTokenIsStable(t *testing.T) {
	h := HashToken("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("abc"))
	assert.NotEqual(t, h, HashToken("abd"))
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/db"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/dberrors"
	"github.com/fitdesk/gymadmin/internal/pkg/logger"
)

// IStaffRepository defines trainer and skill persistence
type IStaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByID(ctx context.Context, id int64) (*models.Staff, error)
	List(ctx context.Context, filter models.StaffFilter, params models.ListParams) ([]models.Staff, int64, error)
	Update(ctx context.Context, staff *models.Staff) error
	Delete(ctx context.Context, id int64) error

	AddSkill(ctx context.Context, skill *models.Skill) error
	GetSkill(ctx context.Context, staffID, skillID int64) (*models.Skill, error)
	UpdateSkillStatus(ctx context.Context, skill *models.Skill) error
	DeleteSkill(ctx context.Context, staffID, skillID int64) error
}

var staffColumns = []string{
	"s.id", "s.first_name", "s.last_name", "s.email", "s.phone", "s.bio",
	"s.is_active", "s.created_at", "s.updated_at",
}

var staffSortColumns = map[string]string{
	"firstName": "s.first_name",
	"lastName":  "s.last_name",
	"email":     "s.email",
	"createdAt": "s.created_at",
}

var skillColumns = []string{"id", "staff_id", "name", "status", "reviewed_at", "created_at"}

// StaffRepository handles staff and staff_skills database operations
type StaffRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewStaffRepository creates a new StaffRepository
func NewStaffRepository(conn db.DBTX) *StaffRepository {
	return &StaffRepository{db: conn, sb: newStatementBuilder()}
}

func scanStaff(row pgx.Row) (*models.Staff, error) {
	var s models.Staff
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Bio, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Skills = []models.Skill{}
	return &s, nil
}

func scanSkill(row pgx.Row) (*models.Skill, error) {
	var k models.Skill
	if err := row.Scan(&k.ID, &k.StaffID, &k.Name, &k.Status, &k.ReviewedAt, &k.CreatedAt); err != nil {
		return nil, err
	}
	return &k, nil
}

// Create inserts the staff member and any initial skills in one transaction
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	now := time.Now()
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("staff").
			Columns("first_name", "last_name", "email", "phone", "bio", "is_active", "created_at", "updated_at").
			Values(staff.FirstName, staff.LastName, strings.ToLower(staff.Email), staff.Phone, staff.Bio, staff.IsActive, now, now).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create staff query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, "staff_email_key") {
				return apperrors.ErrEmailAlreadyExists
			}
			logger.Error().Err(err).Str("email", staff.Email).Msg("Error executing create staff query")
			return fmt.Errorf("error creating staff: %w", err)
		}

		for i := range staff.Skills {
			skill := &staff.Skills[i]
			skill.StaffID = staff.ID
			if err := insertSkill(ctx, tx, r.sb, skill); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertSkill(ctx context.Context, conn db.DBTX, sb squirrel.StatementBuilderType, skill *models.Skill) error {
	if skill.Status == "" {
		skill.Status = models.SkillPending
	}
	sql, args, err := sb.Insert("staff_skills").
		Columns("staff_id", "name", "status", "created_at").
		Values(skill.StaffID, skill.Name, skill.Status, time.Now()).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert skill query: %w", err)
	}

	if err := conn.QueryRow(ctx, sql, args...).Scan(&skill.ID, &skill.CreatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "staff_skills_staff_name_key"):
			return apperrors.ErrSkillAlreadyExists
		case dberrors.IsForeignKeyViolation(err, ""):
			return apperrors.ErrStaffNotFound
		}
		logger.Error().Err(err).Int64("staffID", skill.StaffID).Str("skill", skill.Name).Msg("Error inserting skill")
		return fmt.Errorf("error inserting skill: %w", err)
	}
	return nil
}

// GetByID retrieves a staff member with all skills
func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*models.Staff, error) {
	sql, args, err := r.sb.Select(staffColumns...).From("staff s").Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get staff query: %w", err)
	}

	staff, err := scanStaff(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStaffNotFound
		}
		logger.Error().Err(err).Int64("staffID", id).Msg("Error scanning staff row")
		return nil, fmt.Errorf("error retrieving staff: %w", err)
	}

	skills, err := r.skillsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	staff.Skills = append(staff.Skills, skills[id]...)
	return staff, nil
}

func (r *StaffRepository) skillsFor(ctx context.Context, staffIDs []int64) (map[int64][]models.Skill, error) {
	out := make(map[int64][]models.Skill, len(staffIDs))
	if len(staffIDs) == 0 {
		return out, nil
	}

	sql, args, err := r.sb.Select(skillColumns...).
		From("staff_skills").
		Where(squirrel.Eq{"staff_id": staffIDs}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build skills query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing skills query")
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		k, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill row: %w", err)
		}
		out[k.StaffID] = append(out[k.StaffID], *k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skill rows: %w", err)
	}
	return out, nil
}

func staffWhere(filter models.StaffFilter) squirrel.And {
	where := squirrel.And{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, squirrel.Or{
			squirrel.ILike{"s.email": likePattern(s)},
			squirrel.Expr("s.first_name || ' ' || s.last_name ILIKE ?", likePattern(s)),
		})
	}
	if filter.IsActive != nil {
		where = append(where, squirrel.Eq{"s.is_active": *filter.IsActive})
	}
	if filter.SkillStatus != "" {
		where = append(where, squirrel.Expr(
			"EXISTS (SELECT 1 FROM staff_skills k WHERE k.staff_id = s.id AND k.status = ?)", filter.SkillStatus))
	}
	return where
}

// List returns one page of staff members with their skills
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter, params models.ListParams) ([]models.Staff, int64, error) {
	where := staffWhere(filter)

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("staff s").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count staff query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count staff query")
		return nil, 0, fmt.Errorf("failed to count staff: %w", err)
	}
	if total == 0 {
		return []models.Staff{}, 0, nil
	}

	q := paginate(r.sb.Select(staffColumns...).From("staff s").Where(where), params, staffSortColumns, "s.created_at")
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list staff query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list staff query")
		return nil, 0, fmt.Errorf("failed to query staff: %w", err)
	}

	staff := make([]models.Staff, 0, params.Size)
	ids := make([]int64, 0, params.Size)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan staff row: %w", err)
		}
		staff = append(staff, *s)
		ids = append(ids, s.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating staff rows: %w", err)
	}

	skills, err := r.skillsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range staff {
		staff[i].Skills = append(staff[i].Skills, skills[staff[i].ID]...)
	}

	return staff, total, nil
}

// Update writes the profile columns; skills are managed separately
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("staff").
		Set("first_name", staff.FirstName).
		Set("last_name", staff.LastName).
		Set("email", strings.ToLower(staff.Email)).
		Set("phone", staff.Phone).
		Set("bio", staff.Bio).
		Set("is_active", staff.IsActive).
		Set("updated_at", staff.UpdatedAt).
		Where(squirrel.Eq{"id": staff.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update staff query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "staff_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Int64("staffID", staff.ID).Msg("Error executing update staff query")
		return fmt.Errorf("error updating staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStaffNotFound
	}
	return nil
}

// Delete removes a staff member and their skills
func (r *StaffRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("staff").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete staff query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("staffID", id).Msg("Error executing delete staff query")
		return fmt.Errorf("error deleting staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStaffNotFound
	}
	return nil
}

// AddSkill inserts a pending skill
func (r *StaffRepository) AddSkill(ctx context.Context, skill *models.Skill) error {
	skill.Status = models.SkillPending
	return insertSkill(ctx, r.db, r.sb, skill)
}

// GetSkill retrieves one skill of a staff member
func (r *StaffRepository) GetSkill(ctx context.Context, staffID, skillID int64) (*models.Skill, error) {
	sql, args, err := r.sb.Select(skillColumns...).
		From("staff_skills").
		Where(squirrel.Eq{"id": skillID, "staff_id": staffID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get skill query: %w", err)
	}

	skill, err := scanSkill(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSkillNotFound
		}
		return nil, fmt.Errorf("error retrieving skill: %w", err)
	}
	return skill, nil
}

// UpdateSkillStatus records a review. Only pending rows are updated.
func (r *StaffRepository) UpdateSkillStatus(ctx context.Context, skill *models.Skill) error {
	now := time.Now()
	sql, args, err := r.sb.Update("staff_skills").
		Set("status", skill.Status).
		Set("reviewed_at", now).
		Where(squirrel.Eq{"id": skill.ID, "staff_id": skill.StaffID, "status": models.SkillPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update skill query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("skillID", skill.ID).Msg("Error executing update skill query")
		return fmt.Errorf("error updating skill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSkillNotPending
	}
	skill.ReviewedAt = &now
	return nil
}

// DeleteSkill removes one skill of a staff member
func (r *StaffRepository) DeleteSkill(ctx context.Context, staffID, skillID int64) error {
	sql, args, err := r.sb.Delete("staff_skills").Where(squirrel.Eq{"id": skillID, "staff_id": staffID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete skill query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting skill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSkillNotFound
	}
	return nil
}

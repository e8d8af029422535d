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

// IClassRepository defines class persistence
type IClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id int64) (*models.Class, error)
	List(ctx context.Context, filter models.ClassFilter, params models.ListParams) ([]models.Class, int64, error)
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
	HasScheduledForInstructor(ctx context.Context, staffID int64) (bool, error)
}

// enrolled_count counts the enrollments that hold a spot
var classColumns = []string{
	"c.id", "c.name", "c.description", "c.instructor_id",
	"COALESCE(s.first_name || ' ' || s.last_name, '') AS instructor_name",
	"c.location", "c.start_time", "c.end_time", "c.capacity",
	"(SELECT COUNT(*) FROM enrollments e WHERE e.class_id = c.id AND e.status IN ('pending', 'approved')) AS enrolled_count",
	"c.status", "c.created_at", "c.updated_at",
}

var classSortColumns = map[string]string{
	"name":          "c.name",
	"startTime":     "c.start_time",
	"capacity":      "c.capacity",
	"createdAt":     "c.created_at",
	"enrolledCount": "enrolled_count",
}

// ClassRepository handles class database operations
type ClassRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(conn db.DBTX) *ClassRepository {
	return &ClassRepository{db: conn, sb: newStatementBuilder()}
}

func (r *ClassRepository) selectClasses() squirrel.SelectBuilder {
	return r.sb.Select(classColumns...).
		From("classes c").
		LeftJoin("staff s ON c.instructor_id = s.id")
}

func scanClass(row pgx.Row) (*models.Class, error) {
	var c models.Class
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.InstructorID, &c.InstructorName,
		&c.Location, &c.StartTime, &c.EndTime, &c.Capacity, &c.EnrolledCount,
		&c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func mapClassWriteError(err error) error {
	if dberrors.IsForeignKeyViolation(err, "") {
		return apperrors.ErrStaffNotFound
	}
	if dberrors.IsCheckViolation(err, "") {
		return apperrors.NewBadRequestError("class violates capacity or time window constraints")
	}
	return nil
}

// Create creates a new class
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.Status == "" {
		class.Status = models.ClassStatusScheduled
	}
	now := time.Now()

	sql, args, err := r.sb.Insert("classes").
		Columns("name", "description", "instructor_id", "location", "start_time", "end_time", "capacity", "status", "created_at", "updated_at").
		Values(class.Name, class.Description, class.InstructorID, class.Location, class.StartTime, class.EndTime, class.Capacity, class.Status, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create class SQL")
		return fmt.Errorf("failed to build create class query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&class.ID, &class.CreatedAt, &class.UpdatedAt); err != nil {
		if mapped := mapClassWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("name", class.Name).Msg("Error executing create class query")
		return fmt.Errorf("error creating class: %w", err)
	}
	return nil
}

// GetByID retrieves a class with its instructor name and enrolled count
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	sql, args, err := r.selectClasses().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get class query: %w", err)
	}

	class, err := scanClass(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrClassNotFound
		}
		logger.Error().Err(err).Int64("classID", id).Msg("Error scanning class row")
		return nil, fmt.Errorf("error retrieving class: %w", err)
	}
	return class, nil
}

func classWhere(filter models.ClassFilter) squirrel.And {
	where := squirrel.And{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, squirrel.ILike{"c.name": likePattern(s)})
	}
	if filter.InstructorID > 0 {
		where = append(where, squirrel.Eq{"c.instructor_id": filter.InstructorID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"c.status": filter.Status})
	}
	if filter.From != nil {
		where = append(where, squirrel.GtOrEq{"c.start_time": *filter.From})
	}
	if filter.To != nil {
		where = append(where, squirrel.Lt{"c.start_time": *filter.To})
	}
	return where
}

// List returns one page of classes and the total number of matches
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter, params models.ListParams) ([]models.Class, int64, error) {
	where := classWhere(filter)

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("classes c").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count classes query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count classes query")
		return nil, 0, fmt.Errorf("failed to count classes: %w", err)
	}
	if total == 0 {
		return []models.Class{}, 0, nil
	}

	sql, args, err := paginate(r.selectClasses().Where(where), params, classSortColumns, "c.start_time").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list classes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list classes query")
		return nil, 0, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	classes := make([]models.Class, 0, params.Size)
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning class row")
			return nil, 0, fmt.Errorf("failed to scan class row: %w", err)
		}
		classes = append(classes, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating class rows: %w", err)
	}

	logger.Debug().Int("page", params.Page).Int64("totalItems", total).Int("returnedItems", len(classes)).Msg("Fetched classes")
	return classes, total, nil
}

// Update writes every mutable column of class
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("classes").
		Set("name", class.Name).
		Set("description", class.Description).
		Set("instructor_id", class.InstructorID).
		Set("location", class.Location).
		Set("start_time", class.StartTime).
		Set("end_time", class.EndTime).
		Set("capacity", class.Capacity).
		Set("status", class.Status).
		Set("updated_at", class.UpdatedAt).
		Where(squirrel.Eq{"id": class.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update class query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapClassWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("classID", class.ID).Msg("Error executing update class query")
		return fmt.Errorf("error updating class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}

// Delete removes a class. Its enrollments cascade.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("classes").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete class query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("classID", id).Msg("Error executing delete class query")
		return fmt.Errorf("error deleting class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}

// HasScheduledForInstructor reports whether staffID teaches an upcoming scheduled class
func (r *ClassRepository) HasScheduledForInstructor(ctx context.Context, staffID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("classes").
		Where(squirrel.Eq{"instructor_id": staffID, "status": models.ClassStatusScheduled}).
		Where(squirrel.Gt{"end_time": time.Now()}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build instructor classes query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Int64("staffID", staffID).Msg("Error checking instructor classes")
		return false, fmt.Errorf("error checking instructor classes: %w", err)
	}
	return exists, nil
}

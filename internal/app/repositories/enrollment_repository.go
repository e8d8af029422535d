package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/db"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/dberrors"
	"github.com/fitdesk/gymadmin/internal/pkg/logger"
)

// IEnrollmentRepository defines enrollment persistence
type IEnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	List(ctx context.Context, filter models.EnrollmentFilter, params models.ListParams) ([]models.Enrollment, int64, error)
	UpdateStatus(ctx context.Context, enrollment *models.Enrollment, from models.EnrollmentStatus) error
	Approve(ctx context.Context, enrollment *models.Enrollment, from models.EnrollmentStatus) error
	Delete(ctx context.Context, id int64) error

	CountByClass(ctx context.Context, classID int64, statuses ...models.EnrollmentStatus) (int, error)
	HasActive(ctx context.Context, classID, userID int64) (bool, error)
}

var enrollmentColumns = []string{
	"e.id", "e.class_id", "e.user_id", "e.status", "e.note",
	"c.name", "c.start_time", "u.first_name || ' ' || u.last_name AS member_name",
	"e.created_at", "e.updated_at",
}

var enrollmentSortColumns = map[string]string{
	"createdAt":  "e.created_at",
	"updatedAt":  "e.updated_at",
	"status":     "e.status",
	"classStart": "c.start_time",
	"memberName": "member_name",
}

// lockClassSQL holds the class row until the transaction ends. Seat counts
// taken after it see every enrollment committed by earlier lock holders.
const lockClassSQL = `SELECT capacity, status FROM classes WHERE id = $1 FOR UPDATE`

// EnrollmentRepository handles enrollment database operations
type EnrollmentRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(conn db.DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: conn, sb: newStatementBuilder()}
}

func (r *EnrollmentRepository) selectEnrollments() squirrel.SelectBuilder {
	return r.sb.Select(enrollmentColumns...).
		From("enrollments e").
		Join("classes c ON e.class_id = c.id").
		Join("users u ON e.user_id = u.id")
}

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	var e models.Enrollment
	var classStart time.Time
	err := row.Scan(
		&e.ID, &e.ClassID, &e.UserID, &e.Status, &e.Note,
		&e.ClassName, &classStart, &e.MemberName,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ClassStart = &classStart
	return &e, nil
}

// lockClass locks the class row inside tx and returns its capacity and status
func lockClass(ctx context.Context, tx pgx.Tx, classID int64) (int, models.ClassStatus, error) {
	var capacity int
	var status models.ClassStatus
	if err := tx.QueryRow(ctx, lockClassSQL, classID).Scan(&capacity, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", apperrors.ErrClassNotFound
		}
		return 0, "", fmt.Errorf("error locking class: %w", err)
	}
	return capacity, status, nil
}

// Create inserts a pending enrollment if the class still has room.
// A full class yields ErrClassFull; a duplicate active enrollment ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentPending
	}
	now := time.Now()

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		capacity, _, err := lockClass(ctx, tx, enrollment.ClassID)
		if err != nil {
			return err
		}
		taken, err := r.countByClass(ctx, tx, enrollment.ClassID, models.EnrollmentPending, models.EnrollmentApproved)
		if err != nil {
			return err
		}
		if taken >= capacity {
			return apperrors.ErrClassFull
		}

		sql, args, err := r.sb.Insert("enrollments").
			Columns("class_id", "user_id", "status", "note", "created_at", "updated_at").
			Values(enrollment.ClassID, enrollment.UserID, enrollment.Status, enrollment.Note, now, now).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create enrollment query: %w", err)
		}
		return tx.QueryRow(ctx, sql, args...).Scan(&enrollment.ID, &enrollment.CreatedAt, &enrollment.UpdatedAt)
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrClassFull), errors.Is(err, apperrors.ErrClassNotFound):
			return err
		case dberrors.IsDuplicateConstraintError(err, "enrollments_active_key"):
			return apperrors.ErrAlreadyEnrolled
		case dberrors.IsForeignKeyViolation(err, ""):
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("classID", enrollment.ClassID).Int64("userID", enrollment.UserID).Msg("Error inserting enrollment")
		return fmt.Errorf("error creating enrollment: %w", err)
	}
	return nil
}

// GetByID retrieves an enrollment with class and member names
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	sql, args, err := r.selectEnrollments().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	e, err := scanEnrollment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error scanning enrollment row")
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}
	return e, nil
}

func enrollmentWhere(filter models.EnrollmentFilter) squirrel.And {
	where := squirrel.And{}
	if filter.ClassID > 0 {
		where = append(where, squirrel.Eq{"e.class_id": filter.ClassID})
	}
	if filter.UserID > 0 {
		where = append(where, squirrel.Eq{"e.user_id": filter.UserID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"e.status": filter.Status})
	}
	return where
}

// List returns one page of enrollments and the total number of matches
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter, params models.ListParams) ([]models.Enrollment, int64, error) {
	where := enrollmentWhere(filter)

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("enrollments e").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count enrollments query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count enrollments query")
		return nil, 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	if total == 0 {
		return []models.Enrollment{}, 0, nil
	}

	sql, args, err := paginate(r.selectEnrollments().Where(where), params, enrollmentSortColumns, "e.created_at").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list enrollments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list enrollments query")
		return nil, 0, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]models.Enrollment, 0, params.Size)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan enrollment row: %w", err)
		}
		enrollments = append(enrollments, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating enrollment rows: %w", err)
	}

	return enrollments, total, nil
}

// UpdateStatus moves the enrollment to enrollment.Status if it is still in
// from. A concurrent change yields ErrInvalidStatusTransition.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, enrollment *models.Enrollment, from models.EnrollmentStatus) error {
	return r.updateStatus(ctx, r.db, enrollment, from)
}

// Approve moves the enrollment from from to approved while the class row is
// locked, so two approvals cannot both take the last seat.
func (r *EnrollmentRepository) Approve(ctx context.Context, enrollment *models.Enrollment, from models.EnrollmentStatus) error {
	enrollment.Status = models.EnrollmentApproved
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		capacity, status, err := lockClass(ctx, tx, enrollment.ClassID)
		if err != nil {
			return err
		}
		if status != models.ClassStatusScheduled {
			return apperrors.ErrClassNotOpen
		}
		approved, err := r.countByClass(ctx, tx, enrollment.ClassID, models.EnrollmentApproved)
		if err != nil {
			return err
		}
		if approved >= capacity {
			return apperrors.ErrClassFull
		}
		return r.updateStatus(ctx, tx, enrollment, from)
	})
}

func (r *EnrollmentRepository) updateStatus(ctx context.Context, conn db.DBTX, enrollment *models.Enrollment, from models.EnrollmentStatus) error {
	enrollment.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("enrollments").
		Set("status", enrollment.Status).
		Set("note", enrollment.Note).
		Set("updated_at", enrollment.UpdatedAt).
		Where(squirrel.Eq{"id": enrollment.ID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update enrollment query: %w", err)
	}

	tag, err := conn.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("enrollmentID", enrollment.ID).Msg("Error executing update enrollment query")
		return fmt.Errorf("error updating enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidStatusTransition
	}
	return nil
}

// Delete removes an enrollment
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("enrollments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete enrollment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEnrollmentNotFound
	}
	return nil
}

// CountByClass counts the class's enrollments in any of statuses (all when empty)
func (r *EnrollmentRepository) CountByClass(ctx context.Context, classID int64, statuses ...models.EnrollmentStatus) (int, error) {
	return r.countByClass(ctx, r.db, classID, statuses...)
}

func (r *EnrollmentRepository) countByClass(ctx context.Context, conn db.DBTX, classID int64, statuses ...models.EnrollmentStatus) (int, error) {
	sql, args, err := r.countByClassQuery(classID, statuses...).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count enrollments query: %w", err)
	}

	var n int
	if err := conn.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting enrollments: %w", err)
	}
	return n, nil
}

func (r *EnrollmentRepository) countByClassQuery(classID int64, statuses ...models.EnrollmentStatus) squirrel.SelectBuilder {
	where := squirrel.And{squirrel.Eq{"class_id": classID}}
	if len(statuses) > 0 {
		where = append(where, squirrel.Eq{"status": statuses})
	}

	return r.sb.Select("COUNT(*)").From("enrollments").Where(where)
}

// HasActive reports whether the user holds a pending or approved spot in the class
func (r *EnrollmentRepository) HasActive(ctx context.Context, classID, userID int64) (bool, error) {
	sql, args, err := r.sb.Select("COUNT(*) > 0").From("enrollments").
		Where(squirrel.Eq{
			"class_id": classID,
			"user_id":  userID,
			"status":   []models.EnrollmentStatus{models.EnrollmentPending, models.EnrollmentApproved},
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build active enrollment query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking active enrollment: %w", err)
	}
	return exists, nil
}

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

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter, params models.ListParams) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error

	UpdateLastLogin(ctx context.Context, userID int64) error
	CountByRole(ctx context.Context, role models.RoleType) (int64, error)
	IsActive(ctx context.Context, userID int64) (bool, error)
}

var userColumns = []string{
	"id", "email", "password", "first_name", "last_name", "phone",
	"role_type", "is_active", "last_login_at", "created_at", "updated_at",
}

var userSortColumns = map[string]string{
	"email":       "email",
	"firstName":   "first_name",
	"lastName":    "last_name",
	"roleType":    "role_type",
	"lastLoginAt": "last_login_at",
	"createdAt":   "created_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(conn db.DBTX) *UserRepository {
	return &UserRepository{db: conn, sb: newStatementBuilder()}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Phone,
		&u.RoleType, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and fills in the generated id and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("users").
		Columns("email", "password", "first_name", "last_name", "phone", "role_type", "is_active", "created_at", "updated_at").
		Values(strings.ToLower(user.Email), user.Password, user.FirstName, user.LastName, user.Phone, user.RoleType, user.IsActive, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	user.Email = strings.ToLower(user.Email)
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

func userWhere(filter models.UserFilter) squirrel.And {
	where := squirrel.And{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, squirrel.Or{
			squirrel.ILike{"email": likePattern(s)},
			squirrel.Expr("first_name || ' ' || last_name ILIKE ?", likePattern(s)),
		})
	}
	if filter.Role != "" {
		where = append(where, squirrel.Eq{"role_type": filter.Role})
	}
	if filter.IsActive != nil {
		where = append(where, squirrel.Eq{"is_active": *filter.IsActive})
	}
	return where
}

// List returns one page of users and the total number of matches
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter, params models.ListParams) ([]models.User, int64, error) {
	where := userWhere(filter)

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("users").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count users query")
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if total == 0 {
		return []models.User{}, 0, nil
	}

	q := paginate(r.sb.Select(userColumns...).From("users").Where(where), params, userSortColumns, "created_at")
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, params.Size)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning user row")
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, total, nil
}

// Update writes every mutable column of user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("users").
		Set("email", strings.ToLower(user.Email)).
		Set("password", user.Password).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("phone", user.Phone).
		Set("role_type", user.RoleType).
		Set("is_active", user.IsActive).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error executing update user query")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user; refresh tokens and enrollments cascade
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing delete user query")
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update("users").
		Set("last_login_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating last login")
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

// CountByRole counts active and inactive users with role
func (r *UserRepository) CountByRole(ctx context.Context, role models.RoleType) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("users").Where(squirrel.Eq{"role_type": role}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count by role query: %w", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting users by role: %w", err)
	}
	return n, nil
}

// IsActive reports whether the account exists and is enabled
func (r *UserRepository) IsActive(ctx context.Context, userID int64) (bool, error) {
	sql, args, err := r.sb.Select("is_active").From("users").Where(squirrel.Eq{"id": userID}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build is active query: %w", err)
	}
	var active bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.ErrUserNotFound
		}
		return false, fmt.Errorf("error checking user status: %w", err)
	}
	return active, nil
}

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

// IVideoRepository defines workout video persistence
type IVideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id int64) (*models.Video, error)
	List(ctx context.Context, filter models.VideoFilter, params models.ListParams) ([]models.Video, int64, error)
	Update(ctx context.Context, video *models.Video) error
	Delete(ctx context.Context, id int64) error
}

var videoColumns = []string{
	"id", "title", "description", "category", "difficulty", "duration_seconds",
	"video_url", "thumbnail_url", "instructor_id", "is_published", "created_at", "updated_at",
}

var videoSortColumns = map[string]string{
	"title":           "title",
	"category":        "category",
	"durationSeconds": "duration_seconds",
	"createdAt":       "created_at",
}

// VideoRepository handles video database operations
type VideoRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewVideoRepository creates a new VideoRepository
func NewVideoRepository(conn db.DBTX) *VideoRepository {
	return &VideoRepository{db: conn, sb: newStatementBuilder()}
}

func scanVideo(row pgx.Row) (*models.Video, error) {
	var v models.Video
	err := row.Scan(
		&v.ID, &v.Title, &v.Description, &v.Category, &v.Difficulty, &v.DurationSeconds,
		&v.VideoURL, &v.ThumbnailURL, &v.InstructorID, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create creates a new video
func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("videos").
		Columns("title", "description", "category", "difficulty", "duration_seconds",
			"video_url", "thumbnail_url", "instructor_id", "is_published", "created_at", "updated_at").
		Values(video.Title, video.Description, video.Category, video.Difficulty, video.DurationSeconds,
			video.VideoURL, video.ThumbnailURL, video.InstructorID, video.IsPublished, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create video query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&video.ID, &video.CreatedAt, &video.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err, "") {
			return apperrors.ErrStaffNotFound
		}
		logger.Error().Err(err).Str("title", video.Title).Msg("Error executing create video query")
		return fmt.Errorf("error creating video: %w", err)
	}
	return nil
}

// GetByID retrieves a video by ID
func (r *VideoRepository) GetByID(ctx context.Context, id int64) (*models.Video, error) {
	sql, args, err := r.sb.Select(videoColumns...).From("videos").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get video query: %w", err)
	}

	video, err := scanVideo(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrVideoNotFound
		}
		logger.Error().Err(err).Int64("videoID", id).Msg("Error scanning video row")
		return nil, fmt.Errorf("error retrieving video: %w", err)
	}
	return video, nil
}

func videoWhere(filter models.VideoFilter) squirrel.And {
	where := squirrel.And{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, squirrel.Or{
			squirrel.ILike{"title": likePattern(s)},
			squirrel.ILike{"description": likePattern(s)},
		})
	}
	if filter.Category != "" {
		where = append(where, squirrel.Eq{"category": strings.ToLower(filter.Category)})
	}
	if filter.Difficulty != "" {
		where = append(where, squirrel.Eq{"difficulty": filter.Difficulty})
	}
	if filter.PublishedOnly {
		where = append(where, squirrel.Eq{"is_published": true})
	}
	return where
}

// List returns one page of videos and the total number of matches
func (r *VideoRepository) List(ctx context.Context, filter models.VideoFilter, params models.ListParams) ([]models.Video, int64, error) {
	where := videoWhere(filter)

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("videos").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count videos query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count videos query")
		return nil, 0, fmt.Errorf("failed to count videos: %w", err)
	}
	if total == 0 {
		return []models.Video{}, 0, nil
	}

	sql, args, err := paginate(r.sb.Select(videoColumns...).From("videos").Where(where), params, videoSortColumns, "created_at").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list videos query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list videos query")
		return nil, 0, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	videos := make([]models.Video, 0, params.Size)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating video rows: %w", err)
	}

	return videos, total, nil
}

// Update writes every mutable column of video
func (r *VideoRepository) Update(ctx context.Context, video *models.Video) error {
	video.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("videos").
		Set("title", video.Title).
		Set("description", video.Description).
		Set("category", video.Category).
		Set("difficulty", video.Difficulty).
		Set("duration_seconds", video.DurationSeconds).
		Set("video_url", video.VideoURL).
		Set("thumbnail_url", video.ThumbnailURL).
		Set("instructor_id", video.InstructorID).
		Set("is_published", video.IsPublished).
		Set("updated_at", video.UpdatedAt).
		Where(squirrel.Eq{"id": video.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update video query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, "") {
			return apperrors.ErrStaffNotFound
		}
		logger.Error().Err(err).Int64("videoID", video.ID).Msg("Error executing update video query")
		return fmt.Errorf("error updating video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrVideoNotFound
	}
	return nil
}

// Delete removes a video row; the caller removes its files
func (r *VideoRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("videos").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete video query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrVideoNotFound
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/app/repositories"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/filestorage"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

// IVideoService is the contract the video controller depends on
type IVideoService interface {
	List(ctx context.Context, actor models.Actor, filter models.VideoFilter, params models.ListParams) (*dto.Page[models.Video], error)
	GetByID(ctx context.Context, actor models.Actor, id int64) (*models.Video, error)
	Create(ctx context.Context, req *dto.CreateVideoRequest) (*models.Video, error)
	Update(ctx context.Context, id int64, req *dto.UpdateVideoRequest) (*models.Video, error)
	Delete(ctx context.Context, id int64) error
	UploadFile(ctx context.Context, id int64, fileHeader *multipart.FileHeader) (*models.Video, error)
}

// VideoService manages the workout video library
type VideoService struct {
	videoRepo repositories.IVideoRepository
	staffRepo repositories.IStaffRepository
	storage   filestorage.FileStorage
	logger    zerolog.Logger
}

// NewVideoService creates a new VideoService
func NewVideoService(videoRepo repositories.IVideoRepository, staffRepo repositories.IStaffRepository, storage filestorage.FileStorage, logger zerolog.Logger) *VideoService {
	return &VideoService{videoRepo: videoRepo, staffRepo: staffRepo, storage: storage, logger: logger}
}

func validDifficulty(d models.Difficulty) bool {
	switch d {
	case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
		return true
	}
	return false
}

func (s *VideoService) validate(ctx context.Context, v *models.Video, checkInstructor bool) error {
	var errs []error
	if l := len([]rune(v.Title)); l < 2 || l > 200 {
		errs = append(errs, apperrors.NewValidationError("title", "title must be between 2 and 200 characters"))
	}
	if v.Category == "" {
		errs = append(errs, apperrors.NewValidationError("category", "category is required"))
	}
	if !validDifficulty(v.Difficulty) {
		errs = append(errs, apperrors.NewValidationError("difficulty", "difficulty must be one of: beginner intermediate advanced"))
	}
	if v.DurationSeconds <= 0 {
		errs = append(errs, apperrors.NewValidationError("durationSeconds", "durationSeconds must be positive"))
	}
	if err := validation.Merge(nil, errs...); err != nil {
		return err
	}

	if checkInstructor && v.InstructorID != nil {
		if _, err := s.staffRepo.GetByID(ctx, *v.InstructorID); err != nil {
			return err
		}
	}
	return nil
}

// List returns a page of videos. Non-admins only see published ones.
func (s *VideoService) List(ctx context.Context, actor models.Actor, filter models.VideoFilter, params models.ListParams) (*dto.Page[models.Video], error) {
	if filter.Difficulty != "" && !validDifficulty(filter.Difficulty) {
		return nil, apperrors.NewValidationError("difficulty", "difficulty must be one of: beginner intermediate advanced")
	}
	if !actor.IsAdmin() {
		filter.PublishedOnly = true
	}

	videos, total, err := s.videoRepo.List(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return newPage(videos, total, params), nil
}

// GetByID returns a video. Unpublished videos are hidden from non-admins.
func (s *VideoService) GetByID(ctx context.Context, actor models.Actor, id int64) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished && !actor.IsAdmin() {
		return nil, apperrors.ErrVideoNotFound
	}
	return video, nil
}

// Create adds a video to the library
func (s *VideoService) Create(ctx context.Context, req *dto.CreateVideoRequest) (*models.Video, error) {
	video := &models.Video{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Category:        strings.ToLower(strings.TrimSpace(req.Category)),
		Difficulty:      models.Difficulty(req.Difficulty),
		DurationSeconds: req.DurationSeconds,
		VideoURL:        req.VideoURL,
		ThumbnailURL:    req.ThumbnailURL,
		InstructorID:    req.InstructorID,
		IsPublished:     req.IsPublished,
	}
	if err := s.validate(ctx, video, true); err != nil {
		return nil, err
	}

	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("videoID", video.ID).Str("title", video.Title).Msg("Video created")
	return video, nil
}

// Update applies a partial update
func (s *VideoService) Update(ctx context.Context, id int64, req *dto.UpdateVideoRequest) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		video.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		video.Description = req.Description
	}
	if req.Category != nil {
		video.Category = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.Difficulty != nil {
		video.Difficulty = models.Difficulty(*req.Difficulty)
	}
	if req.DurationSeconds != nil {
		video.DurationSeconds = *req.DurationSeconds
	}
	if req.VideoURL != nil {
		video.VideoURL = req.VideoURL
	}
	if req.ThumbnailURL != nil {
		video.ThumbnailURL = req.ThumbnailURL
	}
	if req.InstructorID != nil {
		video.InstructorID = req.InstructorID
	}
	if req.IsPublished != nil {
		video.IsPublished = *req.IsPublished
	}

	if err := s.validate(ctx, video, req.InstructorID != nil); err != nil {
		return nil, err
	}
	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("videoID", id).Msg("Video updated")
	return video, nil
}

// Delete removes a video and any file stored for it
func (s *VideoService) Delete(ctx context.Context, id int64) error {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.videoRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeStored(video.VideoURL)
	s.logger.Info().Int64("videoID", id).Msg("Video deleted")
	return nil
}

// UploadFile stores the video file and points the video at it
func (s *VideoService) UploadFile(ctx context.Context, id int64, fileHeader *multipart.FileHeader) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.SaveFileWithPath(fileHeader, fmt.Sprintf("videos/%d", id))
	if err != nil {
		switch {
		case errors.Is(err, filestorage.ErrNoFile):
			return nil, apperrors.NewValidationError("file", "file is required")
		case errors.Is(err, filestorage.ErrFileTooLarge):
			return nil, err
		case errors.Is(err, filestorage.ErrUnsupportedFileExt):
			return nil, apperrors.NewValidationError("file", err.Error())
		}
		return nil, fmt.Errorf("failed to store video file: %w", err)
	}

	previous := video.VideoURL
	video.VideoURL = &url
	if err := s.videoRepo.Update(ctx, video); err != nil {
		s.removeStored(&url)
		return nil, err
	}
	s.removeStored(previous)

	s.logger.Info().Int64("videoID", id).Str("url", url).Msg("Video file uploaded")
	return video, nil
}

// removeStored deletes a file we host. External URLs are left alone.
func (s *VideoService) removeStored(fileURL *string) {
	if fileURL == nil || *fileURL == "" || strings.HasPrefix(*fileURL, "http://") || strings.HasPrefix(*fileURL, "https://") {
		return
	}
	if err := s.storage.DeleteFile(*fileURL); err != nil {
		s.logger.Warn().Err(err).Str("url", *fileURL).Msg("Failed to delete stored video file")
	}
}

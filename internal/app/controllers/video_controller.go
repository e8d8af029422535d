package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/app/services"
	"github.com/fitdesk/gymadmin/internal/middleware"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/filestorage"
	"github.com/fitdesk/gymadmin/internal/pkg/helpers"
)

// VideoController handles the workout video library
type VideoController struct {
	videoService services.IVideoService
}

// NewVideoController creates a new VideoController
func NewVideoController(videoService services.IVideoService) *VideoController {
	return &VideoController{videoService: videoService}
}

// ListVideos returns a page of videos
// @Summary List videos
// @Description Non-admins only see published videos
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Title contains"
// @Param category query string false "Category"
// @Param difficulty query string false "beginner, intermediate or advanced"
// @Param sortBy query string false "title, category, durationSeconds or createdAt"
// @Param sortOrder query string false "ASC or DESC"
// @Success 200 {object} dto.APIResponse{data=dto.Page[models.Video]} "Videos retrieved"
// @Router /videos [get]
func (c *VideoController) ListVideos(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	filter := models.VideoFilter{
		Search:     ctx.Query("search"),
		Category:   ctx.Query("category"),
		Difficulty: models.Difficulty(ctx.Query("difficulty")),
	}

	page, err := c.videoService.List(ctx.Request.Context(), a, filter, helpers.ParseListParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// GetVideo returns one video
// @Summary Get video
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Video ID"
// @Success 200 {object} dto.APIResponse{data=models.Video} "Video retrieved"
// @Failure 404 {object} dto.ErrorResponse "Video not found"
// @Router /videos/{id} [get]
func (c *VideoController) GetVideo(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "video")
	if !ok {
		return
	}

	video, err := c.videoService.GetByID(ctx.Request.Context(), a, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, video, "")
}

// CreateVideo adds a video
// @Summary Create video
// @Tags videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateVideoRequest true "Video"
// @Success 201 {object} dto.APIResponse{data=models.Video} "Video created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /videos [post]
func (c *VideoController) CreateVideo(ctx *gin.Context) {
	var req dto.CreateVideoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	video, err := c.videoService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, video, "Video created")
}

// UpdateVideo applies a partial update
// @Summary Update video
// @Tags videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Video ID"
// @Param request body dto.UpdateVideoRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Video} "Video updated"
// @Failure 404 {object} dto.ErrorResponse "Video not found"
// @Router /videos/{id} [patch]
func (c *VideoController) UpdateVideo(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "video")
	if !ok {
		return
	}

	var req dto.UpdateVideoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	video, err := c.videoService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, video, "Video updated")
}

// DeleteVideo removes a video and its stored file
// @Summary Delete video
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Video ID"
// @Success 200 {object} dto.APIResponse{data=dto.IDResponse} "Video deleted"
// @Failure 404 {object} dto.ErrorResponse "Video not found"
// @Router /videos/{id} [delete]
func (c *VideoController) DeleteVideo(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "video")
	if !ok {
		return
	}

	if err := c.videoService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.IDResponse{ID: id}, "Video deleted")
}

// UploadVideoFile stores the video file
// @Summary Upload video file
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Video ID"
// @Param file formData file true "Video file"
// @Success 200 {object} dto.APIResponse{data=models.Video} "File uploaded"
// @Failure 400 {object} dto.ErrorResponse "Missing file or unsupported type"
// @Failure 404 {object} dto.ErrorResponse "Video not found"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Router /videos/{id}/file [post]
func (c *VideoController) UploadVideoFile(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "video")
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			middleware.HandleAPIError(ctx, filestorage.ErrNoFile)
			return
		}
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid multipart form"))
		return
	}

	video, err := c.videoService.UploadFile(ctx.Request.Context(), id, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, video, "File uploaded")
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/app/services"
	"github.com/fitdesk/gymadmin/internal/middleware"
	"github.com/fitdesk/gymadmin/internal/pkg/helpers"
)

// ClassController handles class scheduling endpoints
type ClassController struct {
	classService services.IClassService
}

// NewClassController creates a new ClassController
func NewClassController(classService services.IClassService) *ClassController {
	return &ClassController{classService: classService}
}

// ListClasses returns a page of classes
// @Summary List classes
// @Description Lists classes with pagination, filters and sorting
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Name contains"
// @Param instructorId query int false "Instructor staff ID"
// @Param status query string false "scheduled or cancelled"
// @Param from query string false "Starts at or after (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Starts before (RFC3339 or YYYY-MM-DD)"
// @Param sortBy query string false "name, startTime, capacity or createdAt"
// @Param sortOrder query string false "ASC or DESC"
// @Success 200 {object} dto.APIResponse{data=dto.Page[models.Class]} "Classes retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	filter := models.ClassFilter{
		Search:       ctx.Query("search"),
		InstructorID: helpers.ParseInt64Query(ctx, "instructorId"),
		Status:       models.ClassStatus(ctx.Query("status")),
		From:         helpers.ParseTimeQuery(ctx, "from"),
		To:           helpers.ParseTimeQuery(ctx, "to"),
	}

	page, err := c.classService.List(ctx.Request.Context(), filter, helpers.ParseListParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// GetClass returns one class
// @Summary Get class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=models.Class} "Class retrieved"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /admin/classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "class")
	if !ok {
		return
	}

	class, err := c.classService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, class, "")
}

// CreateClass schedules a class
// @Summary Create class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClassRequest true "Class"
// @Success 201 {object} dto.APIResponse{data=models.Class} "Class created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Instructor not found"
// @Failure 409 {object} dto.ErrorResponse "Instructor inactive"
// @Router /admin/classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	var req dto.CreateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	class, err := c.classService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, class, "Class created")
}

// UpdateClass applies a partial update
// @Summary Update class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.UpdateClassRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Class} "Class updated"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Capacity below active enrollments"
// @Router /admin/classes/{id} [patch]
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "class")
	if !ok {
		return
	}

	var req dto.UpdateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	class, err := c.classService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, class, "Class updated")
}

// DeleteClass removes a class
// @Summary Delete class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.IDResponse} "Class deleted"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Class has approved enrollments"
// @Router /admin/classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "class")
	if !ok {
		return
	}

	if err := c.classService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.IDResponse{ID: id}, "Class deleted")
}

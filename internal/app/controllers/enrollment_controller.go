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

// EnrollmentController handles enrollment endpoints for members and admins
type EnrollmentController struct {
	enrollmentService services.IEnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.IEnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollmentService: enrollmentService}
}

// ListEnrollments returns the enrollments visible to the caller
// @Summary List enrollments
// @Description Admins see every enrollment; members only their own
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param classId query int false "Class ID"
// @Param userId query int false "User ID (admins only)"
// @Param status query string false "pending, approved, rejected, cancelled or completed"
// @Param sortBy query string false "createdAt, updatedAt, status, classStart or memberName"
// @Param sortOrder query string false "ASC or DESC"
// @Success 200 {object} dto.APIResponse{data=dto.Page[models.Enrollment]} "Enrollments retrieved"
// @Router /customer/enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	filter := models.EnrollmentFilter{
		ClassID: helpers.ParseInt64Query(ctx, "classId"),
		UserID:  helpers.ParseInt64Query(ctx, "userId"),
		Status:  models.EnrollmentStatus(ctx.Query("status")),
	}

	page, err := c.enrollmentService.List(ctx.Request.Context(), a, filter, helpers.ParseListParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// GetEnrollment returns one enrollment
// @Summary Get enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=models.Enrollment} "Enrollment retrieved"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /customer/enrollments/{id} [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "enrollment")
	if !ok {
		return
	}

	enrollment, err := c.enrollmentService.GetByID(ctx.Request.Context(), a, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, enrollment, "")
}

// CreateEnrollment enrolls a member in a class
// @Summary Create enrollment
// @Description Members enroll themselves; admins may pass userId to enroll someone else
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEnrollmentRequest true "Enrollment"
// @Success 201 {object} dto.APIResponse{data=models.Enrollment} "Enrollment created"
// @Failure 403 {object} dto.ErrorResponse "Cannot enroll other members"
// @Failure 404 {object} dto.ErrorResponse "Class or user not found"
// @Failure 409 {object} dto.ErrorResponse "Class full, closed, or already enrolled"
// @Router /customer/enrollments [post]
func (c *EnrollmentController) CreateEnrollment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	var req dto.CreateEnrollmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	enrollment, err := c.enrollmentService.Create(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, enrollment, "Enrollment created")
}

// UpdateEnrollment moves an enrollment through its lifecycle
// @Summary Change enrollment status
// @Description Members may only cancel their own enrollments
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param request body dto.UpdateEnrollmentRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Enrollment} "Enrollment updated"
// @Failure 403 {object} dto.ErrorResponse "Transition not allowed for this user"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or class full"
// @Router /customer/enrollments/{id} [patch]
func (c *EnrollmentController) UpdateEnrollment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "enrollment")
	if !ok {
		return
	}

	var req dto.UpdateEnrollmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	enrollment, err := c.enrollmentService.UpdateStatus(ctx.Request.Context(), a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, enrollment, "Enrollment updated")
}

// DeleteEnrollment removes an enrollment record
// @Summary Delete enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.IDResponse} "Enrollment deleted"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /customer/enrollments/{id} [delete]
func (c *EnrollmentController) DeleteEnrollment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "enrollment")
	if !ok {
		return
	}

	if err := c.enrollmentService.Delete(ctx.Request.Context(), a, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.IDResponse{ID: id}, "Enrollment deleted")
}

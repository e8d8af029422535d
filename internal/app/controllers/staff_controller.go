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

// StaffController handles trainer endpoints
type StaffController struct {
	staffService services.IStaffService
}

// NewStaffController creates a new StaffController
func NewStaffController(staffService services.IStaffService) *StaffController {
	return &StaffController{staffService: staffService}
}

// ListStaff returns a page of staff members
// @Summary List staff
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Name or email contains"
// @Param isActive query bool false "Active flag"
// @Param skillStatus query string false "Only staff having a skill in this status"
// @Param sortBy query string false "lastName, email or createdAt"
// @Param sortOrder query string false "ASC or DESC"
// @Success 200 {object} dto.APIResponse{data=dto.Page[models.Staff]} "Staff retrieved"
// @Router /admin/staff [get]
func (c *StaffController) ListStaff(ctx *gin.Context) {
	filter := models.StaffFilter{
		Search:      ctx.Query("search"),
		IsActive:    helpers.ParseBoolQuery(ctx, "isActive"),
		SkillStatus: models.SkillStatus(ctx.Query("skillStatus")),
	}

	page, err := c.staffService.List(ctx.Request.Context(), filter, helpers.ParseListParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// GetStaff returns one staff member with skills
// @Summary Get staff member
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} dto.APIResponse{data=models.Staff} "Staff member retrieved"
// @Failure 404 {object} dto.ErrorResponse "Staff member not found"
// @Router /admin/staff/{id} [get]
func (c *StaffController) GetStaff(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "staff")
	if !ok {
		return
	}

	staff, err := c.staffService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, staff, "")
}

// CreateStaff adds a trainer
// @Summary Create staff member
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStaffRequest true "Staff member"
// @Success 201 {object} dto.APIResponse{data=models.Staff} "Staff member created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /admin/staff [post]
func (c *StaffController) CreateStaff(ctx *gin.Context) {
	var req dto.CreateStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	staff, err := c.staffService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, staff, "Staff member created")
}

// UpdateStaff applies a partial update
// @Summary Update staff member
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param request body dto.UpdateStaffRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Staff} "Staff member updated"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Staff member not found"
// @Router /admin/staff/{id} [patch]
func (c *StaffController) UpdateStaff(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "staff")
	if !ok {
		return
	}

	var req dto.UpdateStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	staff, err := c.staffService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, staff, "Staff member updated")
}

// DeleteStaff removes a trainer
// @Summary Delete staff member
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} dto.APIResponse{data=dto.IDResponse} "Staff member deleted"
// @Failure 404 {object} dto.ErrorResponse "Staff member not found"
// @Failure 409 {object} dto.ErrorResponse "Staff member instructs scheduled classes"
// @Router /admin/staff/{id} [delete]
func (c *StaffController) DeleteStaff(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "staff")
	if !ok {
		return
	}

	if err := c.staffService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.IDResponse{ID: id}, "Staff member deleted")
}

// AddSkill submits a skill for review
// @Summary Add skill
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param request body dto.AddSkillRequest true "Skill"
// @Success 201 {object} dto.APIResponse{data=models.Skill} "Skill added"
// @Failure 409 {object} dto.ErrorResponse "Skill already exists"
// @Router /admin/staff/{id}/skills [post]
func (c *StaffController) AddSkill(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "staff")
	if !ok {
		return
	}

	var req dto.AddSkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	skill, err := c.staffService.AddSkill(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, skill, "Skill added")
}

// ReviewSkill approves or rejects a pending skill
// @Summary Review skill
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param skillId path int true "Skill ID"
// @Param request body dto.ReviewSkillRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.Skill} "Skill reviewed"
// @Failure 404 {object} dto.ErrorResponse "Skill not found"
// @Failure 409 {object} dto.ErrorResponse "Skill is not pending"
// @Router /admin/staff/{id}/skills/{skillId} [patch]
func (c *StaffController) ReviewSkill(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "staff")
	if !ok {
		return
	}
	skillID, ok := pathID(ctx, "skillId", "skill")
	if !ok {
		return
	}

	var req dto.ReviewSkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	skill, err := c.staffService.ReviewSkill(ctx.Request.Context(), id, skillID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, skill, "Skill reviewed")
}

// DeleteSkill removes a skill
// @Summary Delete skill
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param skillId path int true "Skill ID"
// @Success 200 {object} dto.APIResponse{data=dto.IDResponse} "Skill deleted"
// @Failure 404 {object} dto.ErrorResponse "Skill not found"
// @Router /admin/staff/{id}/skills/{skillId} [delete]
func (c *StaffController) DeleteSkill(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "staff")
	if !ok {
		return
	}
	skillID, ok := pathID(ctx, "skillId", "skill")
	if !ok {
		return
	}

	if err := c.staffService.DeleteSkill(ctx.Request.Context(), id, skillID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.IDResponse{ID: skillID}, "Skill deleted")
}

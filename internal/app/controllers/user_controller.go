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

// UserController handles admin account management
type UserController struct {
	userService services.IUserService
}

// NewUserController creates a new UserController
func NewUserController(userService services.IUserService) *UserController {
	return &UserController{userService: userService}
}

// ListUsers returns a page of accounts
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Name or email contains"
// @Param role query string false "ADMIN, STAFF or CUSTOMER"
// @Param isActive query bool false "Active flag"
// @Param sortBy query string false "email, firstName, lastName, roleType, lastLoginAt or createdAt"
// @Param sortOrder query string false "ASC or DESC"
// @Success 200 {object} dto.APIResponse{data=dto.Page[models.User]} "Users retrieved"
// @Router /admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	filter := models.UserFilter{
		Search:   ctx.Query("search"),
		Role:     models.RoleType(ctx.Query("role")),
		IsActive: helpers.ParseBoolQuery(ctx, "isActive"),
	}

	page, err := c.userService.List(ctx.Request.Context(), filter, helpers.ParseListParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "")
}

// GetUser returns one account
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.User} "User retrieved"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "user")
	if !ok {
		return
	}

	user, err := c.userService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, user, "")
}

// CreateUser registers an account
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "Account"
// @Success 201 {object} dto.APIResponse{data=models.User} "User created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /admin/users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.userService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, user, "User created")
}

// UpdateUser applies a partial update, including password resets
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.User} "User updated"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Cannot deactivate own account"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [patch]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "user")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.userService.Update(ctx.Request.Context(), a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, user, "User updated")
}

// DeleteUser removes an account
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.IDResponse} "User deleted"
// @Failure 403 {object} dto.ErrorResponse "Cannot delete own account"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "user")
	if !ok {
		return
	}

	if err := c.userService.Delete(ctx.Request.Context(), a, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.IDResponse{ID: id}, "User deleted")
}

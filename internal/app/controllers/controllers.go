// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/middleware"
	"github.com/fitdesk/gymadmin/internal/pkg/helpers"
)

func respond(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, dto.NewSuccessResponse(data, message))
}

// pathID parses the named path parameter and answers 400 when it is not a positive integer
func pathID(ctx *gin.Context, name, label string) (int64, bool) {
	id, ok := helpers.ParseIDParam(ctx, name)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID").
			WithField(name).
			WithDetails(label + " ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
	}
	return id, ok
}

// actor returns the authenticated caller. JWTAuth runs before every handler
// that calls this, so a miss means the route is wired wrong.
func actor(ctx *gin.Context) (models.Actor, bool) {
	a, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
	}
	return a, ok
}

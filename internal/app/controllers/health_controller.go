package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fitdesk/gymadmin/internal/app/models/dto"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports service liveness
type HealthController struct {
	db Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// HealthStatus is the body of the health endpoint
type HealthStatus struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"up"`
}

// Health checks the database connection
// @Summary Health check
// @Tags platform
// @Produce json
// @Success 200 {object} dto.APIResponse{data=controllers.HealthStatus} "Service healthy"
// @Failure 503 {object} dto.ErrorResponse "Database unreachable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := c.db.Ping(pingCtx); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unreachable").
			WithSeverity(dto.ErrorSeverityCritical)
		ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
		return
	}
	respond(ctx, http.StatusOK, HealthStatus{Status: "ok", Database: "up"}, "")
}

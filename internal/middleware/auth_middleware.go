package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/auth"
	"github.com/fitdesk/gymadmin/internal/pkg/logger"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextEmail    = "email"
	ContextRoleType = "roleType"
)

// AccountChecker reports whether an account may still use its tokens.
type AccountChecker interface {
	IsActive(ctx context.Context, userID int64) (bool, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	accounts   AccountChecker
}

// NewAuthMiddleware creates a new AuthMiddleware. accounts may be nil, in
// which case tokens of deactivated users stay valid until they expire.
func NewAuthMiddleware(jwtService *auth.JWTService, accounts AccountChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		accounts:   accounts,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message, details string) {
	errorDetail := dto.NewErrorDetail(code, message).WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Swagger UI sometimes sends the token as a query parameter
		if authHeader == "" {
			authHeader = c.Query("token")
		}

		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "Authorization header missing")
			return
		}

		tokenString := strings.Trim(authHeader, "\"'")
		if strings.HasPrefix(tokenString, "Bearer ") || strings.Count(tokenString, ".") != 2 {
			var err error
			tokenString, err = auth.ExtractBearerToken(authHeader)
			if err != nil {
				abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "Invalid token format")
				return
			}
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			case errors.Is(err, auth.ErrInvalidFormat):
				errorDetails = "Invalid token format"
			}
			abortUnauthorized(c, errorCode, "Authentication failed", errorDetails)
			return
		}

		if m.accounts != nil {
			active, err := m.accounts.IsActive(c.Request.Context(), claims.UserID)
			if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
				logger.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to check account status")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
				return
			}
			if !active {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, "Account is disabled")
				c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoleType, claims.RoleType)

		c.Next()
	}
}

// RoleRequired lets the request through when the caller has any of roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "User role not found")
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// GetUserID returns the authenticated user's id
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetRole returns the authenticated user's role
func GetRole(c *gin.Context) (models.RoleType, bool) {
	v, exists := c.Get(ContextRoleType)
	if !exists {
		return "", false
	}
	role, ok := v.(models.RoleType)
	return role, ok
}

// GetActor bundles id and role for services that apply ownership rules
func GetActor(c *gin.Context) (models.Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return models.Actor{}, false
	}
	role, ok := GetRole(c)
	if !ok {
		return models.Actor{}, false
	}
	return models.Actor{UserID: id, Role: role}, true
}

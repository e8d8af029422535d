package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/filestorage"
	"github.com/fitdesk/gymadmin/internal/pkg/logger"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Specific sentinels come before the generic ones they may wrap.
var errorMappings = []errorMapping{
	// Auth
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{apperrors.ErrTooManyAttempts, http.StatusTooManyRequests, dto.ErrorCodeTooManyRequests, "Too many attempts, try again later"},
	{apperrors.ErrSelfModification, http.StatusForbidden, dto.ErrorCodeForbidden, "Admins cannot deactivate or delete their own account"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	// Not found
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrClassNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Class not found"},
	{apperrors.ErrStaffNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Staff member not found"},
	{apperrors.ErrSkillNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Skill not found"},
	{apperrors.ErrEnrollmentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Enrollment not found"},
	{apperrors.ErrVideoNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Video not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	// Conflicts
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrSkillAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Skill already exists for this staff member"},
	{apperrors.ErrAlreadyEnrolled, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "User already has an active enrollment in this class"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrClassFull, http.StatusConflict, dto.ErrorCodeConflict, "Class is full"},
	{apperrors.ErrClassNotOpen, http.StatusConflict, dto.ErrorCodeConflict, "Class is not open for enrollment"},
	{apperrors.ErrClassHasEnrollments, http.StatusConflict, dto.ErrorCodeConflict, "Class has approved enrollments and cannot be deleted"},
	{apperrors.ErrCapacityBelowActive, http.StatusConflict, dto.ErrorCodeConflict, "Capacity cannot be lower than the number of active enrollments"},
	{apperrors.ErrStaffHasClasses, http.StatusConflict, dto.ErrorCodeConflict, "Staff member instructs scheduled classes and cannot be deleted"},
	{apperrors.ErrStaffInactive, http.StatusConflict, dto.ErrorCodeConflict, "Staff member is not active"},
	{apperrors.ErrSkillNotPending, http.StatusConflict, dto.ErrorCodeConflict, "Only pending skills can be reviewed"},
	{apperrors.ErrInvalidStatusTransition, http.StatusConflict, dto.ErrorCodeConflict, "Invalid enrollment status transition"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},

	// Request problems
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{filestorage.ErrNoFile, http.StatusBadRequest, dto.ErrorCodeBadRequest, "No file uploaded"},
	{filestorage.ErrUnsupportedFileExt, http.StatusBadRequest, dto.ErrorCodeBadRequest, "File type is not allowed"},
	{filestorage.ErrFileTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeBadRequest, "File exceeds the maximum upload size"},
}

// HandleAPIError maps a service error onto an HTTP status and error envelope
func HandleAPIError(c *gin.Context, err error) {
	var form *validation.FormError
	if errors.As(err, &form) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(formErrorDetail(form)))
		return
	}

	var custom *apperrors.CustomError
	hasCustom := errors.As(err, &custom)

	if hasCustom && errors.Is(custom, apperrors.ErrValidationFailed) {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, custom.Error())
		if field, ok := custom.Details["field"].(string); ok {
			detail.WithField(field)
		}
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}
	if errors.Is(err, apperrors.ErrValidationFailed) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")))
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if hasCustom && custom.Message != "" {
			message = custom.Message
		}
		detail := dto.NewErrorDetail(m.code, message)
		if hasCustom && custom.Details != nil {
			detail.WithDetails(custom.Details)
		}
		c.JSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Str("requestId", GetRequestID(c)).
		Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}

func formErrorDetail(form *validation.FormError) *dto.ErrorDetail {
	message := "Validation failed"
	if len(form.Fields) > 0 {
		message = form.Fields[0].Message
	}
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message).WithDetails(form.Fields)
	if len(form.Fields) == 1 {
		detail.WithField(form.Fields[0].Field)
	}
	return detail
}

// HandleBindError answers a request whose body or query could not be bound
func HandleBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/logger"
)

// EnrollmentLookup is the read access authorization needs
type EnrollmentLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
}

// AuthorizationService applies the ownership rules for member-facing resources.
// Admins may act on anything; everyone else only on their own enrollments.
type AuthorizationService struct {
	enrollments EnrollmentLookup
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(enrollments EnrollmentLookup) *AuthorizationService {
	return &AuthorizationService{enrollments: enrollments}
}

// CanViewEnrollment reports whether actor may read e
func (s *AuthorizationService) CanViewEnrollment(actor models.Actor, e *models.Enrollment) bool {
	return actor.IsAdmin() || e.UserID == actor.UserID
}

// ScopeEnrollmentFilter restricts a list filter to what actor may see
func (s *AuthorizationService) ScopeEnrollmentFilter(actor models.Actor, filter models.EnrollmentFilter) models.EnrollmentFilter {
	if !actor.IsAdmin() {
		filter.UserID = actor.UserID
	}
	return filter
}

// ResolveEnrollee picks whose enrollment is being created. Only admins may
// enroll someone else.
func (s *AuthorizationService) ResolveEnrollee(actor models.Actor, requested *int64) (int64, error) {
	if requested == nil || *requested == actor.UserID {
		return actor.UserID, nil
	}
	if !actor.IsAdmin() {
		return 0, apperrors.NewForbiddenError("only admins can enroll other members")
	}
	return *requested, nil
}

// AuthorizeTransition checks that actor may move e to next. Members may only
// cancel their own enrollments; the lifecycle itself is checked by the caller.
func (s *AuthorizationService) AuthorizeTransition(actor models.Actor, e *models.Enrollment, next models.EnrollmentStatus) error {
	if actor.IsAdmin() {
		return nil
	}
	if e.UserID != actor.UserID {
		return apperrors.ErrEnrollmentNotFound
	}
	if next != models.EnrollmentCancelled {
		return apperrors.NewForbiddenError("members can only cancel their enrollments")
	}
	return nil
}

// LoadEnrollment fetches an enrollment actor may see. Enrollments of other
// members are reported as not found so their ids cannot be discovered.
func (s *AuthorizationService) LoadEnrollment(ctx context.Context, actor models.Actor, id int64) (*models.Enrollment, error) {
	e, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrEnrollmentNotFound) {
			return nil, err
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Int64("userID", actor.UserID).Msg("Error loading enrollment for authorization")
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}

	if !s.CanViewEnrollment(actor, e) {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	return e, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fitdesk/gymadmin/internal/app/auth"
	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/app/repositories"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/metrics"
)

// IEnrollmentService is the contract the enrollment controller depends on
type IEnrollmentService interface {
	List(ctx context.Context, actor models.Actor, filter models.EnrollmentFilter, params models.ListParams) (*dto.Page[models.Enrollment], error)
	GetByID(ctx context.Context, actor models.Actor, id int64) (*models.Enrollment, error)
	Create(ctx context.Context, actor models.Actor, req *dto.CreateEnrollmentRequest) (*models.Enrollment, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateEnrollmentRequest) (*models.Enrollment, error)
	Delete(ctx context.Context, actor models.Actor, id int64) error
}

// EnrollmentService runs the enrollment lifecycle
type EnrollmentService struct {
	enrollmentRepo repositories.IEnrollmentRepository
	classRepo      repositories.IClassRepository
	userRepo       repositories.IUserRepository
	authz          *auth.AuthorizationService
	now            func() time.Time
	logger         zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	enrollmentRepo repositories.IEnrollmentRepository,
	classRepo repositories.IClassRepository,
	userRepo repositories.IUserRepository,
	authz *auth.AuthorizationService,
	logger zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		classRepo:      classRepo,
		userRepo:       userRepo,
		authz:          authz,
		now:            time.Now,
		logger:         logger,
	}
}

// List returns the enrollments actor may see
func (s *EnrollmentService) List(ctx context.Context, actor models.Actor, filter models.EnrollmentFilter, params models.ListParams) (*dto.Page[models.Enrollment], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("status", "status must be one of: pending approved rejected cancelled completed")
	}

	filter = s.authz.ScopeEnrollmentFilter(actor, filter)
	enrollments, total, err := s.enrollmentRepo.List(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return newPage(enrollments, total, params), nil
}

// GetByID returns one enrollment if actor may see it
func (s *EnrollmentService) GetByID(ctx context.Context, actor models.Actor, id int64) (*models.Enrollment, error) {
	return s.authz.LoadEnrollment(ctx, actor, id)
}

// Create enrolls a member in a scheduled class that has not started yet.
// New enrollments start pending.
func (s *EnrollmentService) Create(ctx context.Context, actor models.Actor, req *dto.CreateEnrollmentRequest) (*models.Enrollment, error) {
	userID, err := s.authz.ResolveEnrollee(actor, req.UserID)
	if err != nil {
		return nil, err
	}

	member, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	class, err := s.classRepo.GetByID(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if class.Status != models.ClassStatusScheduled || !class.StartTime.After(s.now()) {
		return nil, apperrors.ErrClassNotOpen
	}

	active, err := s.enrollmentRepo.HasActive(ctx, class.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing enrollment: %w", err)
	}
	if active {
		return nil, apperrors.ErrAlreadyEnrolled
	}

	enrollment := &models.Enrollment{
		ClassID: class.ID,
		UserID:  userID,
		Status:  models.EnrollmentPending,
		Note:    req.Note,
	}
	// Capacity is checked again under the class row lock
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	metrics.RecordEnrollmentTransition(string(enrollment.Status))

	s.logger.Info().
		Int64("enrollmentID", enrollment.ID).
		Int64("classID", class.ID).
		Int64("userID", userID).
		Int64("actorID", actor.UserID).
		Msg("Enrollment created")

	return s.enrollmentRepo.GetByID(ctx, enrollment.ID)
}

// UpdateStatus moves an enrollment to the requested status
func (s *EnrollmentService) UpdateStatus(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateEnrollmentRequest) (*models.Enrollment, error) {
	next := models.EnrollmentStatus(req.Status)
	if !next.Valid() {
		return nil, apperrors.NewValidationError("status", "status must be one of: pending approved rejected cancelled completed")
	}

	enrollment, err := s.authz.LoadEnrollment(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeTransition(actor, enrollment, next); err != nil {
		return nil, err
	}
	if !enrollment.Status.CanTransitionTo(next) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidStatusTransition,
			fmt.Sprintf("cannot move enrollment from %s to %s", enrollment.Status, next))
	}

	from := enrollment.Status
	enrollment.Status = next
	if req.Note != nil {
		enrollment.Note = req.Note
	}
	if next == models.EnrollmentApproved {
		// Seats are counted under the class row lock
		err = s.enrollmentRepo.Approve(ctx, enrollment, from)
	} else {
		err = s.enrollmentRepo.UpdateStatus(ctx, enrollment, from)
	}
	if err != nil {
		return nil, err
	}
	metrics.RecordEnrollmentTransition(string(next))

	s.logger.Info().
		Int64("enrollmentID", id).
		Str("from", string(from)).
		Str("to", string(next)).
		Int64("actorID", actor.UserID).
		Msg("Enrollment status changed")
	return enrollment, nil
}

// Delete removes an enrollment record. Admin only.
func (s *EnrollmentService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbiddenError("only admins can delete enrollments")
	}
	if err := s.enrollmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("enrollmentID", id).Int64("actorID", actor.UserID).Msg("Enrollment deleted")
	return nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/app/repositories"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

// IClassService is the contract the class controller depends on
type IClassService interface {
	List(ctx context.Context, filter models.ClassFilter, params models.ListParams) (*dto.Page[models.Class], error)
	GetByID(ctx context.Context, id int64) (*models.Class, error)
	Create(ctx context.Context, req *dto.CreateClassRequest) (*models.Class, error)
	Update(ctx context.Context, id int64, req *dto.UpdateClassRequest) (*models.Class, error)
	Delete(ctx context.Context, id int64) error
}

// ClassService handles class scheduling
type ClassService struct {
	classRepo      repositories.IClassRepository
	staffRepo      repositories.IStaffRepository
	enrollmentRepo repositories.IEnrollmentRepository
	logger         zerolog.Logger
}

// NewClassService creates a new ClassService
func NewClassService(
	classRepo repositories.IClassRepository,
	staffRepo repositories.IStaffRepository,
	enrollmentRepo repositories.IEnrollmentRepository,
	logger zerolog.Logger,
) *ClassService {
	return &ClassService{
		classRepo:      classRepo,
		staffRepo:      staffRepo,
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
	}
}

// validateClass checks the rules every stored class must satisfy
func validateClass(c *models.Class) error {
	return validation.Merge(nil,
		validation.ValidateName("name", c.Name),
		validation.ValidateCapacity(c.Capacity),
		validation.ValidateTimeWindow(c.StartTime, c.EndTime),
	)
}

func (s *ClassService) checkInstructor(ctx context.Context, instructorID *int64) error {
	if instructorID == nil {
		return nil
	}
	staff, err := s.staffRepo.GetByID(ctx, *instructorID)
	if err != nil {
		return err
	}
	if !staff.IsActive {
		return apperrors.ErrStaffInactive
	}
	return nil
}

// List returns a page of classes
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter, params models.ListParams) (*dto.Page[models.Class], error) {
	if filter.Status != "" && filter.Status != models.ClassStatusScheduled && filter.Status != models.ClassStatusCancelled {
		return nil, apperrors.NewValidationError("status", "status must be one of: scheduled cancelled")
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, apperrors.NewValidationError("to", "to must be after from")
	}

	classes, total, err := s.classRepo.List(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return newPage(classes, total, params), nil
}

// GetByID returns one class
func (s *ClassService) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	return s.classRepo.GetByID(ctx, id)
}

// Create schedules a new class
func (s *ClassService) Create(ctx context.Context, req *dto.CreateClassRequest) (*models.Class, error) {
	class := &models.Class{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		InstructorID: req.InstructorID,
		Location:     req.Location,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Capacity:     req.Capacity,
		Status:       models.ClassStatusScheduled,
	}
	if err := validateClass(class); err != nil {
		return nil, err
	}
	if err := s.checkInstructor(ctx, class.InstructorID); err != nil {
		return nil, err
	}

	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("classID", class.ID).Str("name", class.Name).Msg("Class created")
	// Re-read so derived fields (instructor name) are filled in
	return s.classRepo.GetByID(ctx, class.ID)
}

// Update applies a partial update
func (s *ClassService) Update(ctx context.Context, id int64, req *dto.UpdateClassRequest) (*models.Class, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		class.Description = req.Description
	}
	instructorChanged := false
	if req.InstructorID != nil {
		instructorChanged = class.InstructorID == nil || *class.InstructorID != *req.InstructorID
		class.InstructorID = req.InstructorID
	}
	if req.Location != nil {
		class.Location = req.Location
	}
	if req.StartTime != nil {
		class.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		class.EndTime = *req.EndTime
	}
	if req.Capacity != nil {
		class.Capacity = *req.Capacity
	}
	if req.Status != nil {
		status := models.ClassStatus(*req.Status)
		if status != models.ClassStatusScheduled && status != models.ClassStatusCancelled {
			return nil, apperrors.NewValidationError("status", "status must be one of: scheduled cancelled")
		}
		class.Status = status
	}

	if err := validateClass(class); err != nil {
		return nil, err
	}

	if req.Capacity != nil {
		active, err := s.enrollmentRepo.CountByClass(ctx, id, models.EnrollmentPending, models.EnrollmentApproved)
		if err != nil {
			return nil, fmt.Errorf("failed to count enrollments: %w", err)
		}
		if class.Capacity < active {
			return nil, apperrors.ErrCapacityBelowActive
		}
	}

	if instructorChanged {
		if err := s.checkInstructor(ctx, class.InstructorID); err != nil {
			return nil, err
		}
	}

	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("classID", id).Msg("Class updated")
	return s.classRepo.GetByID(ctx, id)
}

// Delete removes a class that has no approved enrollments
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	if _, err := s.classRepo.GetByID(ctx, id); err != nil {
		return err
	}

	approved, err := s.enrollmentRepo.CountByClass(ctx, id, models.EnrollmentApproved)
	if err != nil {
		return fmt.Errorf("failed to count enrollments: %w", err)
	}
	if approved > 0 {
		return apperrors.ErrClassHasEnrollments
	}

	if err := s.classRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("classID", id).Msg("Class deleted")
	return nil
}

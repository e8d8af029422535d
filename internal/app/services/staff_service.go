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

// IStaffService is the contract the staff controller depends on
type IStaffService interface {
	List(ctx context.Context, filter models.StaffFilter, params models.ListParams) (*dto.Page[models.Staff], error)
	GetByID(ctx context.Context, id int64) (*models.Staff, error)
	Create(ctx context.Context, req *dto.CreateStaffRequest) (*models.Staff, error)
	Update(ctx context.Context, id int64, req *dto.UpdateStaffRequest) (*models.Staff, error)
	Delete(ctx context.Context, id int64) error
	AddSkill(ctx context.Context, staffID int64, req *dto.AddSkillRequest) (*models.Skill, error)
	ReviewSkill(ctx context.Context, staffID, skillID int64, req *dto.ReviewSkillRequest) (*models.Skill, error)
	DeleteSkill(ctx context.Context, staffID, skillID int64) error
}

// StaffService manages trainers and the approval of their skills
type StaffService struct {
	staffRepo repositories.IStaffRepository
	classRepo repositories.IClassRepository
	logger    zerolog.Logger
}

// NewStaffService creates a new StaffService
func NewStaffService(staffRepo repositories.IStaffRepository, classRepo repositories.IClassRepository, logger zerolog.Logger) *StaffService {
	return &StaffService{staffRepo: staffRepo, classRepo: classRepo, logger: logger}
}

func validateStaff(s *models.Staff) error {
	return validation.Merge(nil,
		validation.ValidateName("firstName", s.FirstName),
		validation.ValidateName("lastName", s.LastName),
		validation.ValidateEmail(s.Email),
		validation.ValidatePhone(s.Phone),
	)
}

func normalizeSkill(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// List returns a page of staff members
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter, params models.ListParams) (*dto.Page[models.Staff], error) {
	switch filter.SkillStatus {
	case "", models.SkillPending, models.SkillApproved, models.SkillRejected:
	default:
		return nil, apperrors.NewValidationError("skillStatus", "skillStatus must be one of: pending approved rejected")
	}

	staff, total, err := s.staffRepo.List(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return newPage(staff, total, params), nil
}

// GetByID returns one staff member with skills
func (s *StaffService) GetByID(ctx context.Context, id int64) (*models.Staff, error) {
	return s.staffRepo.GetByID(ctx, id)
}

// Create adds a trainer. Initial skills start out pending.
func (s *StaffService) Create(ctx context.Context, req *dto.CreateStaffRequest) (*models.Staff, error) {
	staff := &models.Staff{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		Bio:       req.Bio,
		IsActive:  true,
	}
	if err := validateStaff(staff); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, name := range req.Skills {
		name = normalizeSkill(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		staff.Skills = append(staff.Skills, models.Skill{Name: name, Status: models.SkillPending})
	}

	if err := s.staffRepo.Create(ctx, staff); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("staffID", staff.ID).Int("skills", len(staff.Skills)).Msg("Staff member created")
	return s.staffRepo.GetByID(ctx, staff.ID)
}

// Update applies a partial update of the profile
func (s *StaffService) Update(ctx context.Context, id int64, req *dto.UpdateStaffRequest) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		staff.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		staff.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		staff.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		staff.Phone = req.Phone
	}
	if req.Bio != nil {
		staff.Bio = req.Bio
	}
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}

	if err := validateStaff(staff); err != nil {
		return nil, err
	}
	if err := s.staffRepo.Update(ctx, staff); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("staffID", id).Msg("Staff member updated")
	return staff, nil
}

// Delete removes a trainer who no longer teaches scheduled classes
func (s *StaffService) Delete(ctx context.Context, id int64) error {
	if _, err := s.staffRepo.GetByID(ctx, id); err != nil {
		return err
	}

	busy, err := s.classRepo.HasScheduledForInstructor(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check instructor classes: %w", err)
	}
	if busy {
		return apperrors.ErrStaffHasClasses
	}

	if err := s.staffRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("staffID", id).Msg("Staff member deleted")
	return nil
}

// AddSkill records a skill awaiting review
func (s *StaffService) AddSkill(ctx context.Context, staffID int64, req *dto.AddSkillRequest) (*models.Skill, error) {
	name := normalizeSkill(req.Name)
	if len(name) < 2 || len(name) > 60 {
		return nil, apperrors.NewValidationError("name", "name must be between 2 and 60 characters")
	}

	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		return nil, err
	}

	skill := &models.Skill{StaffID: staffID, Name: name}
	if err := s.staffRepo.AddSkill(ctx, skill); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("staffID", staffID).Str("skill", name).Msg("Skill submitted for review")
	return skill, nil
}

// ReviewSkill approves or rejects a pending skill
func (s *StaffService) ReviewSkill(ctx context.Context, staffID, skillID int64, req *dto.ReviewSkillRequest) (*models.Skill, error) {
	status := models.SkillStatus(req.Status)
	if status != models.SkillApproved && status != models.SkillRejected {
		return nil, apperrors.NewValidationError("status", "status must be one of: approved rejected")
	}

	skill, err := s.staffRepo.GetSkill(ctx, staffID, skillID)
	if err != nil {
		return nil, err
	}
	if skill.Status != models.SkillPending {
		return nil, apperrors.ErrSkillNotPending
	}

	skill.Status = status
	if err := s.staffRepo.UpdateSkillStatus(ctx, skill); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("staffID", staffID).Int64("skillID", skillID).Str("status", string(status)).Msg("Skill reviewed")
	return skill, nil
}

// DeleteSkill removes a skill in any state
func (s *StaffService) DeleteSkill(ctx context.Context, staffID, skillID int64) error {
	return s.staffRepo.DeleteSkill(ctx, staffID, skillID)
}

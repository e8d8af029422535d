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
	"github.com/fitdesk/gymadmin/internal/pkg/auth"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

// IUserService is the contract the user controller depends on
type IUserService interface {
	List(ctx context.Context, filter models.UserFilter, params models.ListParams) (*dto.Page[models.User], error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor models.Actor, id int64) error
}

// UserService manages accounts on behalf of admins
type UserService struct {
	userRepo     repositories.IUserRepository
	tokenRepo    repositories.ITokenRepository
	hashPassword func(string) (string, error)
	logger       zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, tokenRepo repositories.ITokenRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		hashPassword: auth.HashPassword,
		logger:       logger,
	}
}

// List returns a page of accounts
func (s *UserService) List(ctx context.Context, filter models.UserFilter, params models.ListParams) (*dto.Page[models.User], error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apperrors.NewValidationError("role", "role must be one of: ADMIN STAFF CUSTOMER")
	}
	users, total, err := s.userRepo.List(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return newPage(users, total, params), nil
}

// GetByID returns one account
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Create registers a new active account
func (s *UserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Merge(nil,
		validation.ValidateEmail(email),
		validation.ValidatePassword(req.Password),
		validation.ValidateName("firstName", req.FirstName),
		validation.ValidateName("lastName", req.LastName),
		validation.ValidatePhone(req.Phone),
	); err != nil {
		return nil, err
	}

	role := models.RoleType(req.RoleType)
	if !role.Valid() {
		return nil, apperrors.NewValidationError("roleType", "roleType must be one of: ADMIN STAFF CUSTOMER")
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     email,
		Password:  hashed,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     req.Phone,
		RoleType:  role,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User created")
	return user, nil
}

// Update applies a partial update. Admins may not deactivate themselves or
// change their own role.
func (s *UserService) Update(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.UserID == id {
		if req.IsActive != nil && !*req.IsActive {
			return nil, apperrors.ErrSelfModification
		}
		if req.RoleType != nil && models.RoleType(*req.RoleType) != user.RoleType {
			return nil, apperrors.ErrSelfModification
		}
	}

	var checks []error
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		checks = append(checks, validation.ValidateEmail(user.Email))
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
		checks = append(checks, validation.ValidateName("firstName", user.FirstName))
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
		checks = append(checks, validation.ValidateName("lastName", user.LastName))
	}
	if req.Phone != nil {
		user.Phone = req.Phone
		checks = append(checks, validation.ValidatePhone(req.Phone))
	}
	if req.Password != nil {
		checks = append(checks, validation.ValidatePassword(*req.Password))
	}
	if req.RoleType != nil {
		user.RoleType = models.RoleType(*req.RoleType)
		if !user.RoleType.Valid() {
			checks = append(checks, apperrors.NewValidationError("roleType", "roleType must be one of: ADMIN STAFF CUSTOMER"))
		}
	}
	if err := validation.Merge(nil, checks...); err != nil {
		return nil, err
	}

	revokeSessions := false
	if req.Password != nil {
		hashed, err := s.hashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
		revokeSessions = true
	}
	if req.IsActive != nil {
		if user.IsActive && !*req.IsActive {
			revokeSessions = true
		}
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if revokeSessions {
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, user.ID); err != nil {
			s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to revoke sessions after account change")
		}
	}

	s.logger.Info().Int64("userID", user.ID).Int64("by", actor.UserID).Msg("User updated")
	return user, nil
}

// Delete removes an account. Admins may not delete themselves.
func (s *UserService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if actor.UserID == id {
		return apperrors.ErrSelfModification
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", id).Int64("by", actor.UserID).Msg("User deleted")
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/app/repositories"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/auth"
	"github.com/fitdesk/gymadmin/internal/pkg/metrics"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

// IAuthService is the contract the auth controller depends on
type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID int64) (*models.User, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   repositories.IUserRepository
	tokenRepo  repositories.ITokenRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, apperrors.NewValidationError("password", "password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			metrics.RecordLogin("invalid")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		metrics.RecordLogin("invalid")
		s.logger.Warn().Int64("userID", user.ID).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	// Checked after the password so disabled accounts cannot be enumerated
	if !user.IsActive {
		metrics.RecordLogin("disabled")
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Could not record last login")
	}

	resp, err := s.generateAuthResponse(ctx, user)
	if err != nil {
		return nil, err
	}
	metrics.RecordLogin("success")
	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.RoleType)).Msg("User logged in")
	return resp, nil
}

// RefreshToken rotates a refresh token: the old one is revoked and a new pair issued
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.NewValidationError("refreshToken", "refreshToken is required")
	}

	userID, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTokenNotFound, apperrors.ErrTokenExpired, apperrors.ErrTokenRevoked) {
			return nil, err
		}
		return nil, fmt.Errorf("token validation error: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		_ = s.tokenRepo.RevokeAllUserTokens(ctx, user.ID)
		return nil, apperrors.ErrAccountDisabled
	}

	// Revoke first so a replayed token cannot mint a second pair
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil, apperrors.ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.generateAuthResponse(ctx, user)
}

// Logout revokes the refresh token. Unknown or already revoked tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.NewValidationError("refreshToken", "refreshToken is required")
	}
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) generateAuthResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             pair.ExpiresIn,
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: pair.RefreshExpiresIn,
		},
		User: user,
	}, nil
}

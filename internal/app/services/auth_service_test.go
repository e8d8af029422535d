package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/auth"
)

func newTestAuthService(t *testing.T, users ...*models.User) (*AuthService, *fakeUserRepo, *fakeTokenRepo) {
	t.Helper()
	userRepo := newFakeUserRepo(users...)
	tokenRepo := newFakeTokenRepo()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "gymadmin.test",
	})
	return NewAuthService(userRepo, tokenRepo, jwtService, testLogger), userRepo, tokenRepo
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPasswordWithCost(password, 4)
	require.NoError(t, err)
	return h
}

func TestLogin(t *testing.T) {
	admin := &models.User{ID: 1, Email: "admin@gym.example", Password: hashed(t, "Secret123"), RoleType: models.RoleAdmin, IsActive: true}
	disabled := &models.User{ID: 2, Email: "gone@gym.example", Password: hashed(t, "Secret123"), RoleType: models.RoleCustomer}
	svc, userRepo, _ := newTestAuthService(t, admin, disabled)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: " Admin@Gym.Example ", Password: "Secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)

	stored, _ := userRepo.GetByID(ctx, 1)
	assert.NotNil(t, stored.LastLoginAt)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "admin@gym.example", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@gym.example", Password: "Secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "gone@gym.example", Password: "Secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshTokenRotates(t *testing.T) {
	user := &models.User{ID: 1, Email: "member@gym.example", Password: hashed(t, "Secret123"), RoleType: models.RoleCustomer, IsActive: true}
	svc, _, _ := newTestAuthService(t, user)
	ctx := context.Background()

	first, err := svc.Login(ctx, &dto.LoginRequest{Email: "member@gym.example", Password: "Secret123"})
	require.NoError(t, err)

	second, err := svc.RefreshToken(ctx, first.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token.RefreshToken, second.Token.RefreshToken)

	// The old token is spent
	_, err = svc.RefreshToken(ctx, first.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = svc.RefreshToken(ctx, "unknown")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestLogoutIgnoresUnknownToken(t *testing.T) {
	user := &models.User{ID: 1, Email: "member@gym.example", Password: hashed(t, "Secret123"), RoleType: models.RoleCustomer, IsActive: true}
	svc, _, tokens := newTestAuthService(t, user)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "member@gym.example", Password: "Secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token.RefreshToken))
	assert.True(t, tokens.revoked[resp.Token.RefreshToken])
	assert.NoError(t, svc.Logout(ctx, resp.Token.RefreshToken))
	assert.ErrorIs(t, svc.Logout(ctx, " "), apperrors.ErrValidationFailed)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/gymadmin/internal/app/models"
)

func newTestJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "gymadmin.test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService()
	user := &models.User{ID: 7, Email: "admin@gym.example", RoleType: models.RoleAdmin}

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := svc.ValidateAndExtractClaims(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.RoleType)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	pair, err := svc.GenerateTokenPair(&models.User{ID: 1, Email: "a@b.io", RoleType: models.RoleCustomer})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	pair, err := newTestJWTService().GenerateTokenPair(&models.User{ID: 1, Email: "a@b.io", RoleType: models.RoleCustomer})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "gymadmin.test"})
	_, err = other.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer prefix", header: "Bearer a.b.c", want: "a.b.c"},
		{name: "raw token", header: "a.b.c", want: "a.b.c"},
		{name: "quoted", header: "\"Bearer a.b.c\"", want: "a.b.c"},
		{name: "empty", header: "", wantErr: true},
		{name: "not a jwt", header: "Bearer abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPasswordWithCost("Secret123", 4)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Secret123"))
	assert.False(t, CheckPassword(hash, "secret123"))
}

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
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

func newTestUserService(users ...*models.User) (*UserService, *fakeUserRepo, *fakeTokenRepo) {
	userRepo := newFakeUserRepo(users...)
	tokenRepo := newFakeTokenRepo()
	svc := NewUserService(userRepo, tokenRepo, testLogger)
	svc.hashPassword = func(p string) (string, error) { return "hashed:" + p, nil }
	return svc, userRepo, tokenRepo
}

var adminActor = models.Actor{UserID: 1, Role: models.RoleAdmin}

func TestCreateUser(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Create(ctx, &dto.CreateUserRequest{
		Email: "New@Gym.Example", Password: "Lift2024", FirstName: "Jane", LastName: "Doe", RoleType: "CUSTOMER",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@gym.example", user.Email)
	assert.Equal(t, "hashed:Lift2024", user.Password)
	assert.True(t, user.IsActive)

	_, err = svc.Create(ctx, &dto.CreateUserRequest{
		Email: "x@gym.example", Password: "letters", FirstName: "J", LastName: "Doe", RoleType: "CUSTOMER",
	})
	var form *validation.FormError
	require.ErrorAs(t, err, &form)
	assert.NotEmpty(t, form.Field("password"))
	assert.NotEmpty(t, form.Field("firstName"))
}

func TestAdminCannotDisableOrDeleteSelf(t *testing.T) {
	admin := &models.User{ID: 1, Email: "admin@gym.example", FirstName: "Ada", LastName: "Admin", RoleType: models.RoleAdmin, IsActive: true}
	svc, _, _ := newTestUserService(admin)
	ctx := context.Background()

	_, err := svc.Update(ctx, adminActor, 1, &dto.UpdateUserRequest{IsActive: ptr(false)})
	assert.ErrorIs(t, err, apperrors.ErrSelfModification)

	_, err = svc.Update(ctx, adminActor, 1, &dto.UpdateUserRequest{RoleType: ptr("CUSTOMER")})
	assert.ErrorIs(t, err, apperrors.ErrSelfModification)

	assert.ErrorIs(t, svc.Delete(ctx, adminActor, 1), apperrors.ErrSelfModification)

	_, err = svc.Update(ctx, adminActor, 1, &dto.UpdateUserRequest{FirstName: ptr("Adele")})
	assert.NoError(t, err)
}

func TestDeactivationRevokesSessions(t *testing.T) {
	member := &models.User{ID: 5, Email: "m@gym.example", FirstName: "Max", LastName: "Member", RoleType: models.RoleCustomer, IsActive: true}
	svc, userRepo, tokens := newTestUserService(member)
	ctx := context.Background()
	require.NoError(t, tokens.CreateToken(ctx, "t1", 5, time.Time{}))

	updated, err := svc.Update(ctx, adminActor, 5, &dto.UpdateUserRequest{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.True(t, tokens.revoked["t1"])

	active, _ := userRepo.IsActive(ctx, 5)
	assert.False(t, active)
}

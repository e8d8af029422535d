package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/repositories"
	"github.com/fitdesk/gymadmin/internal/pkg/auth"
)

type stubUserRepo struct {
	repositories.IUserRepository
	admins  int64
	created []*models.User
}

func (s *stubUserRepo) CountByRole(_ context.Context, role models.RoleType) (int64, error) {
	if role == models.RoleAdmin {
		return s.admins, nil
	}
	return 0, nil
}

func (s *stubUserRepo) Create(_ context.Context, u *models.User) error {
	u.ID = int64(len(s.created) + 1)
	s.created = append(s.created, u)
	return nil
}

func TestCreateDefaultAdmin(t *testing.T) {
	repo := &stubUserRepo{}
	err := CreateDefaultAdmin(context.Background(), repo, AdminAccount{Email: " Admin@Gym.Example ", Password: "Secret123"}, zerolog.Nop())
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	admin := repo.created[0]
	assert.Equal(t, "admin@gym.example", admin.Email)
	assert.Equal(t, models.RoleAdmin, admin.RoleType)
	assert.True(t, admin.IsActive)
	assert.True(t, auth.CheckPassword(admin.Password, "Secret123"))
}

func TestCreateDefaultAdminSkips(t *testing.T) {
	repo := &stubUserRepo{admins: 1}
	require.NoError(t, CreateDefaultAdmin(context.Background(), repo, AdminAccount{Email: "a@gym.example", Password: "Secret123"}, zerolog.Nop()))
	assert.Empty(t, repo.created)

	repo = &stubUserRepo{}
	require.NoError(t, CreateDefaultAdmin(context.Background(), repo, AdminAccount{Email: "a@gym.example"}, zerolog.Nop()))
	assert.Empty(t, repo.created)
}

package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/repositories"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/auth"
)

// AdminAccount is the account created on an empty installation
type AdminAccount struct {
	Email    string
	Password string
}

// CreateDefaultAdmin creates the configured admin when no admin exists yet.
// An empty password disables seeding.
func CreateDefaultAdmin(ctx context.Context, userRepo repositories.IUserRepository, account AdminAccount, lgr zerolog.Logger) error {
	if account.Password == "" {
		lgr.Info().Msg("No seed admin password configured, skipping admin seeding")
		return nil
	}

	admins, err := userRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admin accounts: %w", err)
	}
	if admins > 0 {
		lgr.Info().Int64("admins", admins).Msg("Admin user already exists, skipping creation")
		return nil
	}

	hashed, err := auth.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(account.Email)),
		Password:  hashed,
		FirstName: "System",
		LastName:  "Administrator",
		RoleType:  models.RoleAdmin,
		IsActive:  true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Warn().Str("email", admin.Email).Msg("Seed admin email belongs to a non-admin account, skipping creation")
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	lgr.Info().Int64("adminID", admin.ID).Str("email", admin.Email).Msg("Default admin user created successfully")
	return nil
}

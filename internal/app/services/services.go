package services

// Services defined in this package:
// - AuthService: login, token refresh and logout
// - UserService: admin management of member and staff accounts
// - ClassService: class scheduling and capacity rules
// - StaffService: trainer records and skill review
// - EnrollmentService: enrollment lifecycle and ownership rules
// - VideoService: workout video library and file uploads

import (
	"github.com/rs/zerolog"

	"github.com/fitdesk/gymadmin/internal/app/auth"
	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/app/repositories"
	pkgauth "github.com/fitdesk/gymadmin/internal/pkg/auth"
	"github.com/fitdesk/gymadmin/internal/pkg/filestorage"
	"github.com/fitdesk/gymadmin/internal/pkg/helpers"
)

// Services bundles every service the HTTP layer uses
type Services struct {
	Auth       *AuthService
	Users      *UserService
	Classes    *ClassService
	Staff      *StaffService
	Enrollment *EnrollmentService
	Videos     *VideoService
}

// NewServices wires services onto the repositories
func NewServices(repos *repositories.Repositories, jwtService *pkgauth.JWTService, storage filestorage.FileStorage, logger zerolog.Logger) *Services {
	authz := auth.NewAuthorizationService(repos.EnrollmentRepository)
	return &Services{
		Auth:       NewAuthService(repos.UserRepository, repos.TokenRepository, jwtService, logger),
		Users:      NewUserService(repos.UserRepository, repos.TokenRepository, logger),
		Classes:    NewClassService(repos.ClassRepository, repos.StaffRepository, repos.EnrollmentRepository, logger),
		Staff:      NewStaffService(repos.StaffRepository, repos.ClassRepository, logger),
		Enrollment: NewEnrollmentService(repos.EnrollmentRepository, repos.ClassRepository, repos.UserRepository, authz, logger),
		Videos:     NewVideoService(repos.VideoRepository, repos.StaffRepository, storage, logger),
	}
}

func newPage[T any](items []T, total int64, params models.ListParams) *dto.Page[T] {
	if items == nil {
		items = []T{}
	}
	return &dto.Page[T]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, params.Page, params.Size),
	}
}

package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appControllers "github.com/fitdesk/gymadmin/internal/app/controllers"
	appMigrations "github.com/fitdesk/gymadmin/internal/app/migrations"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	appRepos "github.com/fitdesk/gymadmin/internal/app/repositories"
	appRoutes "github.com/fitdesk/gymadmin/internal/app/routes"
	appServices "github.com/fitdesk/gymadmin/internal/app/services"
	"github.com/fitdesk/gymadmin/internal/config"
	"github.com/fitdesk/gymadmin/internal/db"
	appMiddleware "github.com/fitdesk/gymadmin/internal/middleware"
	pkgAuth "github.com/fitdesk/gymadmin/internal/pkg/auth"
	"github.com/fitdesk/gymadmin/internal/pkg/filestorage"
	"github.com/fitdesk/gymadmin/internal/pkg/logger"
	"github.com/fitdesk/gymadmin/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	LoginLimiter   *appMiddleware.RateLimiter
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	Logger         zerolog.Logger
}

// ConfigPath returns the config file location, overridable with CONFIG_PATH
func ConfigPath() string {
	return config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:     logLevel,
		Pretty:    cfg.Logging.Format == "text",
		Component: "api",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds the admin.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("dir", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	account := seed.AdminAccount{Email: cfg.Seed.AdminEmail, Password: cfg.Seed.AdminPassword}
	if err := seed.CreateDefaultAdmin(ctx, appRepos.NewUserRepository(database.Pool), account, lgr); err != nil {
		// Not fatal: an operator can still create the admin by hand
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.BaseURL,
		filestorage.WithMaxBytes(int64(cfg.Storage.MaxUploadMB)<<20),
		filestorage.WithAllowedExtensions(cfg.AllowedUploadExtensions()...),
	)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  config.Duration(cfg.JWT.AccessTokenExpiration, 15*time.Minute),
		RefreshTokenExp: config.Duration(cfg.JWT.RefreshTokenExpiration, 168*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, deps.FileStorage, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository)
	deps.LoginLimiter = appMiddleware.NewRateLimiter(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst)

	deps.Controllers = appRoutes.Controllers{
		Auth:        appControllers.NewAuthController(deps.Services.Auth, lgr),
		Classes:     appControllers.NewClassController(deps.Services.Classes),
		Staff:       appControllers.NewStaffController(deps.Services.Staff),
		Users:       appControllers.NewUserController(deps.Services.Users),
		Enrollments: appControllers.NewEnrollmentController(deps.Services.Enrollment),
		Videos:      appControllers.NewVideoController(deps.Services.Videos),
		Health:      appControllers.NewHealthController(database),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
	)
	if cfg.Metrics.Enabled {
		router.Use(appMiddleware.Metrics())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.LoginLimiter)

	router.Static(cfg.Storage.BaseURL, cfg.Storage.Path)
	lgr.Info().Str("path", cfg.Storage.Path).Str("url", cfg.Storage.BaseURL).Msg("Static file serving configured for uploads directory")

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Route not found")))
	})

	return router
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fitdesk/gymadmin/internal/bootstrap"
	"github.com/fitdesk/gymadmin/internal/config"
	"github.com/fitdesk/gymadmin/internal/db"
	"github.com/fitdesk/gymadmin/internal/middleware"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	tokenCleanupInterval   = time.Hour
)

// TokenCleaner removes expired refresh tokens
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// Server holds the state for the HTTP server.
type Server struct {
	config       *config.Config
	router       *gin.Engine
	database     *db.PostgresDB
	loginLimiter *middleware.RateLimiter
	tokens       TokenCleaner
	logger       zerolog.Logger
	http         *http.Server
	stop         context.CancelFunc
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(context.Background(), cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return &Server{
		config:       cfg,
		router:       bootstrap.SetupRouter(cfg, deps, lgr),
		database:     database,
		loginLimiter: deps.LoginLimiter,
		tokens:       deps.Repos.TokenRepository,
		logger:       lgr,
	}, nil
}

// runMaintenance periodically prunes idle rate limiters and expired refresh tokens
func (s *Server) runMaintenance(ctx context.Context) {
	limiterTicker := time.NewTicker(limiterCleanupInterval)
	tokenTicker := time.NewTicker(tokenCleanupInterval)
	defer limiterTicker.Stop()
	defer tokenTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-limiterTicker.C:
			s.loginLimiter.Cleanup(limiterCleanupInterval)
		case <-tokenTicker.C:
			n, err := s.tokens.CleanupExpiredTokens(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("Failed to clean up expired refresh tokens")
				continue
			}
			if n > 0 {
				s.logger.Info().Int64("removed", n).Msg("Expired refresh tokens removed")
			}
		}
	}
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  config.Duration(s.config.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(s.config.Server.WriteTimeout, 60*time.Second),
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	s.stop = stop
	go s.runMaintenance(ctx)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			stop()
			s.database.Close()
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.Duration(s.config.Server.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if s.stop != nil {
		s.stop()
	}

	var shutdownErr error
	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = fmt.Errorf("server shutdown completed with errors: %w", err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}

// Package dashboard implements the gymadmin terminal pages: one page per
// entity, all going through the session guard and the query cache.
package dashboard

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/client"
	"github.com/fitdesk/gymadmin/internal/query"
)

// Cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Resource names used for cache keys and invalidation
const (
	resClasses     = "classes"
	resStaff       = "staff"
	resUsers       = "users"
	resEnrollments = "enrollments"
	resVideos      = "videos"
)

// Config configures the dashboard
type Config struct {
	APIURL      string
	Timeout     time.Duration
	Retries     int
	StaleTime   time.Duration
	Cache       string
	RedisAddr   string
	SessionPath string
	Logger      zerolog.Logger
	// Store overrides the cache backend picked from Cache
	Store query.Store
}

// IO is where pages read answers and write output
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// App holds what every page needs
type App struct {
	cfg      Config
	api      *client.Client
	query    *query.Client
	sessions *SessionStore
	guard    *Guard
	render   *Renderer
	prompt   Prompter
	logger   zerolog.Logger
	closers  []func() error

	Auth        *AuthPage
	Classes     *ClassesPage
	Staff       *StaffPage
	Users       *UsersPage
	Enrollments *EnrollmentsPage
	Videos      *VideosPage
}

// New wires the API client, query cache, session store and pages
func New(ctx context.Context, cfg Config, streams IO) (*App, error) {
	if cfg.SessionPath == "" {
		path, err := DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		cfg.SessionPath = path
	}
	sessions, err := NewSessionStore(cfg.SessionPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		sessions: sessions,
		guard:    NewGuard(sessions, cfg.APIURL),
		render:   NewRenderer(streams.Out, streams.Err),
		prompt:   NewLinePrompter(streams.In, streams.Err),
		logger:   cfg.Logger,
	}

	a.api = client.New(client.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Tokens:  sessions,
		Logger:  cfg.Logger,
	})

	retries := cfg.Retries
	if retries == 0 {
		retries = query.NoRetry
	}
	a.query = query.New(a.openStore(ctx), query.Options{
		StaleTime: cfg.StaleTime,
		Retries:   retries,
		Logger:    cfg.Logger,
		Namespace: a.cacheNamespace,
	})
	for _, resource := range []string{resClasses, resStaff, resUsers, resEnrollments, resVideos} {
		unsubscribe := a.query.Subscribe(resource, a.logCacheEvent)
		a.closers = append(a.closers, func() error {
			unsubscribe()
			return nil
		})
	}

	a.Auth = &AuthPage{app: a}
	a.Classes = &ClassesPage{app: a}
	a.Staff = &StaffPage{app: a}
	a.Users = &UsersPage{app: a}
	a.Enrollments = &EnrollmentsPage{app: a}
	a.Videos = &VideosPage{app: a}
	return a, nil
}

// openStore picks the cache backend. An unreachable redis falls back to
// memory so the dashboard stays usable.
func (a *App) openStore(ctx context.Context) query.Store {
	if a.cfg.Store != nil {
		return a.cfg.Store
	}
	if a.cfg.Cache != CacheRedis {
		return query.NewMemoryStore()
	}

	rdb := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		a.logger.Warn().Err(err).Str("addr", a.cfg.RedisAddr).Msg("Redis cache unavailable, using memory cache")
		_ = rdb.Close()
		return query.NewMemoryStore()
	}

	a.closers = append(a.closers, rdb.Close)
	ttl := 10 * a.cfg.StaleTime
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return query.NewRedisStore(rdb, "", ttl)
}

// cacheNamespace scopes cache keys to the API and the signed-in account, so
// a shared redis never serves one account's reads to another
func (a *App) cacheNamespace() string {
	var userID int64
	if sess, err := a.sessions.Load(); err == nil && sess != nil {
		userID = sess.UserID
	}
	api := sha256.Sum256([]byte(a.cfg.APIURL))
	return fmt.Sprintf("%x/%d|", api[:6], userID)
}

func (a *App) logCacheEvent(e query.Event) {
	a.logger.Debug().
		Str("event", string(e.Kind)).
		Str("resource", e.Resource).
		Str("key", e.Key).
		Msg("Cache event")
}

// Close releases the cache connection
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Query exposes the cache for listeners
func (a *App) Query() *query.Client {
	return a.query
}

// shownError marks an error whose banner is already on screen
type shownError struct{ error }

func (e shownError) Unwrap() error { return e.error }

// Shown reports whether err was already rendered by a page
func Shown(err error) bool {
	var s shownError
	return errors.As(err, &s)
}

// fail renders the error banner and returns err marked as shown
func (a *App) fail(err error) error {
	a.render.Error(err)
	return shownError{err}
}

func (a *App) requireAdmin() error {
	if _, err := a.guard.Require(models.RoleAdmin); err != nil {
		return a.fail(err)
	}
	return nil
}

func (a *App) requireSession() error {
	if _, err := a.guard.Require(); err != nil {
		return a.fail(err)
	}
	return nil
}

// confirm asks before a destructive action unless assumeYes is set
func (a *App) confirm(assumeYes bool, format string, args ...interface{}) (bool, error) {
	if assumeYes {
		return true, nil
	}
	ok, err := a.prompt.Confirm(fmt.Sprintf(format, args...))
	if err != nil {
		return false, a.fail(err)
	}
	if !ok {
		a.render.Success("Cancelled.")
	}
	return ok, nil
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func idString(id int64) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}

func idPtrString(id *int64) string {
	if id == nil {
		return "-"
	}
	return idString(*id)
}

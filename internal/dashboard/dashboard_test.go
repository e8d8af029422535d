package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/client"
	"github.com/fitdesk/gymadmin/internal/query"
)

// fakeAPI records every request that reaches it
type fakeAPI struct {
	mux *http.ServeMux
	srv *httptest.Server

	mu    sync.Mutex
	calls []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{mux: http.NewServeMux()}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

func (f *fakeAPI) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func reply(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.NewSuccessResponse(data, ""))
}

func replyError(w http.ResponseWriter, status int, code dto.ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}

type harness struct {
	app *App
	api *fakeAPI
	out *bytes.Buffer
	err *bytes.Buffer
}

// harnessOptions lets several harnesses share one API and cache
type harnessOptions struct {
	api   *fakeAPI
	store query.Store
	log   io.Writer
}

func newHarness(t *testing.T, input string) *harness {
	return newHarnessWith(t, input, harnessOptions{})
}

func newHarnessWith(t *testing.T, input string, opts harnessOptions) *harness {
	if opts.api == nil {
		opts.api = newFakeAPI(t)
	}
	logger := zerolog.Nop()
	if opts.log != nil {
		logger = zerolog.New(opts.log).Level(zerolog.DebugLevel)
	}

	h := &harness{api: opts.api, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	app, err := New(context.Background(), Config{
		APIURL:      opts.api.srv.URL + "/api",
		Timeout:     2 * time.Second,
		StaleTime:   time.Minute,
		Cache:       CacheMemory,
		Store:       opts.store,
		SessionPath: filepath.Join(t.TempDir(), "session.json"),
		Logger:      logger,
	}, IO{In: strings.NewReader(input), Out: h.out, Err: h.err})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	h.app = app
	return h
}

func (h *harness) signIn(t *testing.T, role models.RoleType) {
	h.saveSession(t, 1, "access", role)
}

// signInAs uses the access token "access-<userID>"
func (h *harness) signInAs(t *testing.T, userID int64, role models.RoleType) {
	h.saveSession(t, userID, fmt.Sprintf("access-%d", userID), role)
}

func (h *harness) saveSession(t *testing.T, userID int64, token string, role models.RoleType) {
	require.NoError(t, h.app.sessions.Save(&Session{
		APIURL:       h.app.cfg.APIURL,
		AccessToken:  token,
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
		UserID:       userID,
		Email:        "op@gym.example",
		Role:         role,
	}))
}

func TestCreateClassRejectsInvalidWindowWithoutRequest(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleAdmin)

	err := h.app.Classes.Create(context.Background(), ClassForm{
		Name:     "Spin",
		Start:    "2030-05-01 10:00",
		End:      "2030-05-01 09:00",
		Capacity: 10,
	})

	require.Error(t, err)
	assert.True(t, Shown(err))
	assert.Contains(t, h.err.String(), "Error: endTime must be after startTime")
	assert.Zero(t, h.api.callCount(""))
}

func TestGuardBlocksPagesWithoutSession(t *testing.T) {
	h := newHarness(t, "")

	err := h.app.Classes.List(context.Background(), Listing[models.ClassFilter]{})

	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Contains(t, h.err.String(), "Error: not signed in")
	assert.Zero(t, h.api.callCount(""))
}

func TestGuardRequire(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	store, err := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	guard := NewGuard(store, "http://api")
	guard.now = func() time.Time { return now }

	tests := []struct {
		name    string
		session Session
		roles   []models.RoleType
		wantErr error
	}{
		{
			name:    "valid",
			session: Session{APIURL: "http://api", AccessToken: "a", ExpiresAt: now.Add(time.Minute), Role: models.RoleAdmin},
			roles:   []models.RoleType{models.RoleAdmin},
		},
		{
			name:    "expired without refresh token",
			session: Session{APIURL: "http://api", AccessToken: "a", ExpiresAt: now.Add(-time.Minute), Role: models.RoleAdmin},
			wantErr: ErrNotSignedIn,
		},
		{
			name: "expired with refresh token",
			session: Session{APIURL: "http://api", AccessToken: "a", RefreshToken: "r", ExpiresAt: now.Add(-time.Minute),
				RefreshExpiresAt: now.Add(time.Hour), Role: models.RoleStaff},
		},
		{
			name: "refresh token expired too",
			session: Session{APIURL: "http://api", AccessToken: "a", RefreshToken: "r", ExpiresAt: now.Add(-time.Hour),
				RefreshExpiresAt: now.Add(-time.Minute)},
			wantErr: ErrNotSignedIn,
		},
		{
			name:    "other api",
			session: Session{APIURL: "http://elsewhere", AccessToken: "a", ExpiresAt: now.Add(time.Minute)},
			wantErr: ErrNotSignedIn,
		},
		{
			name:    "customer on admin page",
			session: Session{APIURL: "http://api", AccessToken: "a", ExpiresAt: now.Add(time.Minute), Role: models.RoleCustomer},
			roles:   []models.RoleType{models.RoleAdmin},
			wantErr: ErrAdminRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := tt.session
			require.NoError(t, store.Save(&sess))

			got, err := guard.Require(tt.roles...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sess.AccessToken, got.AccessToken)
		})
	}
}

func TestNonAdminCannotOpenAdminPages(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleCustomer)
	h.api.handle("GET /api/customer/enrollments", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, dto.Page[models.Enrollment]{})
	})

	err := h.app.Users.List(context.Background(), Listing[models.UserFilter]{})
	assert.ErrorIs(t, err, ErrAdminRequired)
	assert.Zero(t, h.api.callCount(""))

	require.NoError(t, h.app.Enrollments.List(context.Background(), Listing[models.EnrollmentFilter]{}))
	assert.Contains(t, h.out.String(), "No enrollments found.")
}

func TestSessionFileIsOwnerOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store, err := NewSessionStore(path)
	require.NoError(t, err)

	sess, err := store.Start("http://api", &dto.AuthResponse{
		Token: dto.TokenResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900, RefreshTokenExpiresIn: 3600},
		User:  &models.User{ID: 7, Email: "admin@gym.example", FirstName: "Ada", LastName: "Admin", RoleType: models.RoleAdmin},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, sess.Role)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := NewSessionStore(path)
	require.NoError(t, err)
	loaded, err := reopened.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "r", loaded.RefreshToken)
	assert.Equal(t, int64(7), loaded.UserID)

	require.NoError(t, reopened.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestClassListEmptyStateIsCached(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleAdmin)
	h.api.handle("GET /api/admin/classes", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, dto.Page[models.Class]{Items: []models.Class{}})
	})

	ctx := context.Background()
	require.NoError(t, h.app.Classes.List(ctx, Listing[models.ClassFilter]{}))
	require.NoError(t, h.app.Classes.List(ctx, Listing[models.ClassFilter]{}))

	assert.Contains(t, h.err.String(), "Loading classes")
	assert.Contains(t, h.out.String(), "No classes found.")
	assert.Equal(t, 1, h.api.callCount("GET /api/admin/classes"))
}

func TestListShowsErrorBanner(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleAdmin)
	h.api.handle("GET /api/admin/staff", func(w http.ResponseWriter, r *http.Request) {
		replyError(w, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "database unavailable")
	})

	err := h.app.Staff.List(context.Background(), Listing[models.StaffFilter]{})

	assert.ErrorIs(t, err, client.ErrServer)
	assert.True(t, Shown(err))
	assert.Contains(t, h.err.String(), "Error: database unavailable")
	assert.Equal(t, 1, h.api.callCount("GET /api/admin/staff"))
}

func TestCreateClassInvalidatesList(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleAdmin)
	h.api.handle("GET /api/admin/classes", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, dto.Page[models.Class]{Items: []models.Class{{ID: 1, Name: "Yoga"}}})
	})
	h.api.handle("POST /api/admin/classes", func(w http.ResponseWriter, r *http.Request) {
		var req dto.CreateClassRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		reply(w, http.StatusCreated, models.Class{ID: 2, Name: req.Name, Capacity: req.Capacity})
	})

	var events []query.Event
	unsubscribe := h.app.Query().Subscribe(resClasses, func(e query.Event) { events = append(events, e) })
	defer unsubscribe()

	ctx := context.Background()
	require.NoError(t, h.app.Classes.List(ctx, Listing[models.ClassFilter]{}))
	require.NoError(t, h.app.Classes.Create(ctx, ClassForm{
		Name:     "Spin",
		Start:    "2030-05-01 09:00",
		End:      "2030-05-01 10:00",
		Capacity: 12,
	}))
	require.NoError(t, h.app.Classes.List(ctx, Listing[models.ClassFilter]{}))

	assert.Equal(t, 2, h.api.callCount("GET /api/admin/classes"))
	assert.Contains(t, h.out.String(), `Class "Spin" created`)

	var kinds []query.EventKind
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []query.EventKind{query.EventStored, query.EventInvalidated, query.EventStored}, kinds)
}

func TestSessionsSharingCacheReadOnlyTheirOwnEntries(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /api/customer/enrollments", func(w http.ResponseWriter, r *http.Request) {
		page := dto.Page[models.Enrollment]{Items: []models.Enrollment{}}
		if r.Header.Get("Authorization") == "Bearer access-1" {
			page.Items = append(page.Items, models.Enrollment{
				ID: 7, ClassID: 3, UserID: 42, ClassName: "Spin", MemberName: "Other Member", Status: models.EnrollmentApproved,
			})
		}
		reply(w, http.StatusOK, page)
	})
	store := query.NewMemoryStore()
	admin := newHarnessWith(t, "", harnessOptions{api: api, store: store})
	admin.signInAs(t, 1, models.RoleAdmin)
	member := newHarnessWith(t, "", harnessOptions{api: api, store: store})
	member.signInAs(t, 2, models.RoleCustomer)

	ctx := context.Background()
	require.NoError(t, admin.app.Enrollments.List(ctx, Listing[models.EnrollmentFilter]{}))
	assert.Contains(t, admin.out.String(), "Other Member")

	require.NoError(t, member.app.Enrollments.List(ctx, Listing[models.EnrollmentFilter]{}))
	assert.NotContains(t, member.out.String(), "Other Member")
	assert.Contains(t, member.out.String(), "No enrollments found.")
	assert.Equal(t, 2, api.callCount("GET /api/customer/enrollments"))

	// Signing out one account leaves the other's entries cached
	require.NoError(t, member.app.Auth.Logout(ctx))
	require.NoError(t, admin.app.Enrollments.List(ctx, Listing[models.EnrollmentFilter]{}))
	assert.Equal(t, 2, api.callCount("GET /api/customer/enrollments"))
	assert.Equal(t, 1, store.Len())
}

func TestUpdateClassInvalidatesEnrollments(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleAdmin)
	h.api.handle("GET /api/customer/enrollments", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, dto.Page[models.Enrollment]{Items: []models.Enrollment{}})
	})
	h.api.handle("PATCH /api/admin/classes/3", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, models.Class{ID: 3, Name: "Spin Late"})
	})

	ctx := context.Background()
	require.NoError(t, h.app.Enrollments.List(ctx, Listing[models.EnrollmentFilter]{}))
	name := "Spin Late"
	require.NoError(t, h.app.Classes.Update(ctx, 3, ClassPatch{Name: &name}))
	require.NoError(t, h.app.Enrollments.List(ctx, Listing[models.EnrollmentFilter]{}))

	// Enrollment rows carry the class name, so the edit must refetch them
	assert.Equal(t, 2, h.api.callCount("GET /api/customer/enrollments"))
}

func TestCacheEventsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	h := newHarnessWith(t, "", harnessOptions{log: &logs})
	h.signIn(t, models.RoleAdmin)
	h.api.handle("GET /api/admin/classes", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, dto.Page[models.Class]{Items: []models.Class{}})
	})

	ctx := context.Background()
	require.NoError(t, h.app.Classes.List(ctx, Listing[models.ClassFilter]{}))
	h.app.Query().Invalidate(ctx, resStaff)

	out := logs.String()
	assert.Contains(t, out, `"event":"stored","resource":"classes"`)
	assert.Contains(t, out, `"event":"invalidated","resource":"staff"`)
	assert.Equal(t, 2, strings.Count(out, `"message":"Cache event"`))

	require.NoError(t, h.app.Close())
	logs.Reset()
	h.app.Query().Invalidate(ctx, resClasses)
	assert.NotContains(t, logs.String(), "Cache event")
}

func TestRejectEnrollmentAsksFirst(t *testing.T) {
	patched := 0
	setup := func(t *testing.T, answer string) *harness {
		h := newHarness(t, answer)
		h.signIn(t, models.RoleAdmin)
		h.api.handle("PATCH /api/customer/enrollments/5", func(w http.ResponseWriter, r *http.Request) {
			patched++
			reply(w, http.StatusOK, models.Enrollment{ID: 5, Status: models.EnrollmentRejected})
		})
		return h
	}

	h := setup(t, "n\n")
	require.NoError(t, h.app.Enrollments.Transition(context.Background(), 5, models.EnrollmentRejected, "", false))
	assert.Contains(t, h.out.String(), "Cancelled.")
	assert.Zero(t, patched)

	h = setup(t, "y\n")
	require.NoError(t, h.app.Enrollments.Transition(context.Background(), 5, models.EnrollmentRejected, "full", false))
	assert.Equal(t, 1, patched)
	assert.Contains(t, h.out.String(), "Enrollment 5 is now rejected.")
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleAdmin)

	err := h.app.Enrollments.Transition(context.Background(), 5, models.EnrollmentStatus("archived"), "", true)

	require.Error(t, err)
	assert.Contains(t, h.err.String(), "Error:")
	assert.Zero(t, h.api.callCount(""))
}

func TestLogoutClearsSessionWhenRevokeFails(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleAdmin)
	h.api.handle("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		replyError(w, http.StatusServiceUnavailable, dto.ErrorCodeInternalServer, "down")
	})

	require.NoError(t, h.app.Auth.Logout(context.Background()))

	sess, err := h.app.sessions.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
	_, err = os.Stat(h.app.sessions.Path())
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, h.out.String(), "Signed out.")
}

func TestLoginStoresSession(t *testing.T) {
	h := newHarness(t, "secret123\n")
	h.api.handle("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin@gym.example", req.Email)
		assert.Equal(t, "secret123", req.Password)
		reply(w, http.StatusOK, dto.AuthResponse{
			Token: dto.TokenResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900},
			User:  &models.User{ID: 1, Email: req.Email, FirstName: "Ada", LastName: "Admin", RoleType: models.RoleAdmin},
		})
	})

	require.NoError(t, h.app.Auth.Login(context.Background(), " Admin@Gym.example ", ""))

	sess, err := h.app.guard.Require(models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "a", sess.AccessToken)
	assert.Contains(t, h.out.String(), "Signed in as admin@gym.example (ADMIN).")
}

func TestUserExportWalksAllPages(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleAdmin)
	h.api.handle("GET /api/admin/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("size"))
		page := r.URL.Query().Get("page")
		id := int64(1)
		if page == "2" {
			id = 2
		}
		reply(w, http.StatusOK, dto.Page[models.User]{
			Items:      []models.User{{ID: id, Email: "u" + page + "@gym.example", RoleType: models.RoleCustomer}},
			Pagination: dto.PaginationInfo{CurrentPage: int(id), TotalPages: 2, PageSize: 100, TotalItems: 2},
		})
	})

	path := filepath.Join(t.TempDir(), "users.xlsx")
	require.NoError(t, h.app.Users.Export(context.Background(), Listing[models.UserFilter]{}, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Email", rows[0][1])
	assert.Equal(t, "u2@gym.example", rows[2][1])
	assert.Equal(t, 2, h.api.callCount("GET /api/admin/users"))
}

func TestUserImportReportsBadRows(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleAdmin)

	var created []string
	h.api.handle("POST /api/admin/users", func(w http.ResponseWriter, r *http.Request) {
		var req dto.CreateUserRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Email == "taken@gym.example" {
			replyError(w, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "email already registered")
			return
		}
		created = append(created, req.Email)
		reply(w, http.StatusCreated, models.User{ID: int64(len(created)), Email: req.Email})
	})

	path := filepath.Join(t.TempDir(), "import.xlsx")
	require.NoError(t, writeSheet(path, "People", []string{"Email", "Password", "First Name", "Last_Name", "Role"}, [][]interface{}{
		{"new@gym.example", "secret123", "Nina", "New", "customer"},
		{"short@gym.example", "abc", "Sam", "Short", ""},
		{"", "", "", "", ""},
		{"taken@gym.example", "secret123", "Tia", "Taken", "staff"},
	}))

	require.NoError(t, h.app.Users.Import(context.Background(), path))

	assert.Equal(t, []string{"new@gym.example"}, created)
	out := h.out.String()
	assert.Contains(t, out, "Imported 1 of 3 users.")
	assert.Contains(t, out, "short@gym.example")
	assert.Contains(t, out, "email already registered")
}

func TestUserImportNeedsKnownColumns(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t, models.RoleAdmin)

	path := filepath.Join(t.TempDir(), "import.xlsx")
	require.NoError(t, writeSheet(path, "Sheet1", []string{"Colour"}, [][]interface{}{{"red"}}))

	err := h.app.Users.Import(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, h.err.String(), "no recognised columns")
}

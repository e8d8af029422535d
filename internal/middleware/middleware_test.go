package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/auth"
	"github.com/fitdesk/gymadmin/internal/pkg/filestorage"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAccounts struct {
	active map[int64]bool
	err    error
}

func (s stubAccounts) IsActive(_ context.Context, userID int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.active[userID], nil
}

func testJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "middleware-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "gymadmin.test",
	})
}

func tokenFor(t *testing.T, jwt *auth.JWTService, id int64, role models.RoleType) string {
	t.Helper()
	pair, err := jwt.GenerateTokenPair(&models.User{ID: id, Email: "u@gym.example", RoleType: role})
	require.NoError(t, err)
	return pair.AccessToken
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func protectedRouter(m *AuthMiddleware, roles ...models.RoleType) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{m.JWTAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.UserID, "role": actor.Role})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	jwt := testJWT()
	m := NewAuthMiddleware(jwt, stubAccounts{active: map[int64]bool{1: true, 2: false}})

	tests := []struct {
		name   string
		header string
		status int
		code   dto.ErrorCode
	}{
		{"missing header", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"malformed", "Bearer not-a-token", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"bad signature", "Bearer aaa.bbb.ccc", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"disabled account", "Bearer " + tokenFor(t, jwt, 2, models.RoleAdmin), http.StatusForbidden, dto.ErrorCodeAccountDisabled},
		{"valid", "Bearer " + tokenFor(t, jwt, 1, models.RoleAdmin), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedRouter(m).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
			}
		})
	}
}

func TestJWTAuthAccountLookupFailure(t *testing.T) {
	jwt := testJWT()
	m := NewAuthMiddleware(jwt, stubAccounts{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, 1, models.RoleAdmin))
	w := httptest.NewRecorder()
	protectedRouter(m).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRoleRequired(t *testing.T) {
	jwt := testJWT()
	m := NewAuthMiddleware(jwt, nil)
	router := protectedRouter(m, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, 5, models.RoleCustomer))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Error.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, 5, models.RoleAdmin))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
		field  string
	}{
		{"field validation", apperrors.NewValidationError("capacity", "Capacity must be at least 1"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "capacity"},
		{"form", &validation.FormError{Fields: []dto.FieldError{{Field: "endTime", Message: "End time must be after start time"}}}, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "endTime"},
		{"not found", apperrors.ErrClassNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
		{"wrapped conflict", errors.Join(errors.New("ctx"), apperrors.ErrClassFull), http.StatusConflict, dto.ErrorCodeConflict, ""},
		{"forbidden", apperrors.NewForbiddenError("Only admins can delete enrollments"), http.StatusForbidden, dto.ErrorCodeForbidden, ""},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, ""},
		{"too large", filestorage.ErrFileTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeBadRequest, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { HandleAPIError(c, tt.err) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.field, resp.Error.Field)
		})
	}
}

func TestHandleAPIErrorKeepsCustomMessage(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewForbiddenError("Only admins can delete enrollments"))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "Only admins can delete enrollments", decodeError(t, w).Error.Message)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "limits are per client")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("10.0.0.1"))

	now = now.Add(time.Hour)
	rl.Cleanup(10 * time.Minute)
	assert.Empty(t, rl.limiters)
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://dash.local"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://dash.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://dash.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

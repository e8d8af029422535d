package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
)

type memTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func (m *memTokens) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *memTokens) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

func (m *memTokens) SetTokens(auth *dto.AuthResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = auth.Token.AccessToken
	m.refresh = auth.Token.RefreshToken
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(url string, tokens TokenSource) *Client {
	return New(Config{BaseURL: url + "/api", Timeout: 2 * time.Second, Tokens: tokens, Logger: zerolog.Nop()})
}

func TestSendAttachesHeadersAndUnwrapsEnvelope(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		assert.Equal(t, "/api/admin/classes/4", r.URL.Path)
		writeJSON(w, http.StatusOK, dto.NewSuccessResponse(models.Class{ID: 4, Name: "Spin", Capacity: 12}, ""))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, &memTokens{access: "tok-1"})
	class, err := c.Classes.Get(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, "Spin", class.Name)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestListEncodesFilters(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(w, http.StatusOK, dto.NewSuccessResponse(dto.Page[models.Class]{Items: []models.Class{}}, ""))
	}))
	defer srv.Close()

	from := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	c := newTestClient(srv.URL, &memTokens{access: "t"})
	_, err := c.Classes.List(context.Background(),
		models.ClassFilter{Search: "spin", InstructorID: 3, From: &from},
		models.ListParams{Page: 2, Size: 20, SortBy: "name", SortOrder: "ASC"})

	require.NoError(t, err)
	assert.Equal(t, []string{"spin"}, query["search"])
	assert.Equal(t, []string{"3"}, query["instructorId"])
	assert.Equal(t, []string{"2030-05-01T00:00:00Z"}, query["from"])
	assert.Equal(t, []string{"2"}, query["page"])
	assert.Equal(t, []string{"ASC"}, query["sortOrder"])
	assert.NotContains(t, query, "status")
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     interface{}
		sentinel error
		code     dto.ErrorCode
	}{
		{"not found", http.StatusNotFound, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Class not found")), ErrNotFound, dto.ErrorCodeResourceNotFound},
		{"conflict", http.StatusConflict, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeConflict, "Class is full")), ErrConflict, dto.ErrorCodeConflict},
		{"forbidden", http.StatusForbidden, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied")), ErrForbidden, dto.ErrorCodeForbidden},
		{"unprocessable", http.StatusUnprocessableEntity, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "bad")), ErrValidation, dto.ErrorCodeValidationFailed},
		{"plain text", http.StatusTeapot, "nope", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL, &memTokens{access: "t"}).Classes.Get(context.Background(), 1)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.NotEmpty(t, apiErr.Message)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestValidationFieldErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fields := []dto.FieldError{
			{Field: "name", Message: "name is required"},
			{Field: "endTime", Message: "endTime must be after startTime"},
		}
		writeJSON(w, http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fields[0].Message).WithDetails(fields)))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, &memTokens{access: "t"}).Classes.Create(context.Background(), &dto.CreateClassRequest{})
	require.ErrorIs(t, err, ErrValidation)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, map[string]string{
		"name":    "name is required",
		"endTime": "endTime must be after startTime",
	}, apiErr.FieldErrors())
}

func TestRefreshOnceAndReplay(t *testing.T) {
	var refreshCalls, meCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			var req dto.RefreshTokenRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "refresh-1", req.RefreshToken)
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, dto.NewSuccessResponse(dto.AuthResponse{
				Token: dto.TokenResponse{AccessToken: "fresh", RefreshToken: "refresh-2"},
			}, ""))
		case "/api/auth/me":
			atomic.AddInt32(&meCalls, 1)
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeJSON(w, http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")))
				return
			}
			writeJSON(w, http.StatusOK, dto.NewSuccessResponse(models.User{ID: 1, RoleType: models.RoleAdmin}, ""))
		}
	}))
	defer srv.Close()

	tokens := &memTokens{access: "stale", refresh: "refresh-1"}
	user, err := newTestClient(srv.URL, tokens).Auth.Me(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.RoleType)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&meCalls))
	assert.Equal(t, "fresh", tokens.AccessToken())
	assert.Equal(t, "refresh-2", tokens.RefreshToken())
}

func TestUnauthorizedWithoutRefreshToken(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, &memTokens{access: "stale"}).Auth.Me(context.Background())

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, &memTokens{}).Classes.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestBreakerOpensAfterServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "boom")))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/api", Tokens: &memTokens{}, Logger: zerolog.Nop(), BreakerFailures: 2, BreakerTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := c.Classes.Get(context.Background(), 1)
		assert.ErrorIs(t, err, ErrServer)
	}
	_, err := c.Classes.Get(context.Background(), 1)

	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestUploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/videos/8/file", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		assert.Equal(t, "clip.mp4", header.Filename)
		assert.Equal(t, "video-bytes", string(body))

		url := "/uploads/videos/8/clip.mp4"
		writeJSON(w, http.StatusOK, dto.NewSuccessResponse(models.Video{ID: 8, VideoURL: &url}, "File uploaded"))
	}))
	defer srv.Close()

	video, err := newTestClient(srv.URL, &memTokens{access: "t"}).Videos.UploadFile(
		context.Background(), 8, "clip.mp4", strings.NewReader("video-bytes"))

	require.NoError(t, err)
	require.NotNil(t, video.VideoURL)
	assert.Equal(t, "/uploads/videos/8/clip.mp4", *video.VideoURL)
}

package controllers

import (
	"bytes"
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
	"github.com/fitdesk/gymadmin/internal/app/services"
	"github.com/fitdesk/gymadmin/internal/middleware"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubClassService struct {
	services.IClassService
	created  *dto.CreateClassRequest
	filter   models.ClassFilter
	params   models.ListParams
	err      error
	deleteID int64
}

func (s *stubClassService) List(_ context.Context, filter models.ClassFilter, params models.ListParams) (*dto.Page[models.Class], error) {
	s.filter, s.params = filter, params
	if s.err != nil {
		return nil, s.err
	}
	return &dto.Page[models.Class]{Items: []models.Class{{ID: 1, Name: "Spin"}}}, nil
}

func (s *stubClassService) GetByID(_ context.Context, id int64) (*models.Class, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Class{ID: id, Name: "Spin"}, nil
}

func (s *stubClassService) Create(_ context.Context, req *dto.CreateClassRequest) (*models.Class, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Class{ID: 9, Name: req.Name, Capacity: req.Capacity}, nil
}

func (s *stubClassService) Delete(_ context.Context, id int64) error {
	s.deleteID = id
	return s.err
}

type stubEnrollmentService struct {
	services.IEnrollmentService
	actor  models.Actor
	update *dto.UpdateEnrollmentRequest
	err    error
}

func (s *stubEnrollmentService) Create(_ context.Context, a models.Actor, req *dto.CreateEnrollmentRequest) (*models.Enrollment, error) {
	s.actor = a
	if s.err != nil {
		return nil, s.err
	}
	return &models.Enrollment{ID: 3, ClassID: req.ClassID, UserID: a.UserID, Status: models.EnrollmentPending}, nil
}

func (s *stubEnrollmentService) UpdateStatus(_ context.Context, a models.Actor, id int64, req *dto.UpdateEnrollmentRequest) (*models.Enrollment, error) {
	s.actor, s.update = a, req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Enrollment{ID: id, Status: models.EnrollmentStatus(req.Status)}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// withActor stands in for JWTAuth
func withActor(id int64, role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextRoleType, role)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorCode {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func classRouter(svc services.IClassService) *gin.Engine {
	r := gin.New()
	c := NewClassController(svc)
	g := r.Group("/classes", withActor(1, models.RoleAdmin))
	g.GET("", c.ListClasses)
	g.GET("/:id", c.GetClass)
	g.POST("", c.CreateClass)
	g.DELETE("/:id", c.DeleteClass)
	return r
}

func TestListClassesParsesQuery(t *testing.T) {
	svc := &stubClassService{}
	w := doJSON(t, classRouter(svc), http.MethodGet,
		"/classes?page=2&size=5&search=spin&instructorId=4&status=scheduled&from=2030-05-01&sortBy=name&sortOrder=asc", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "spin", svc.filter.Search)
	assert.Equal(t, int64(4), svc.filter.InstructorID)
	assert.Equal(t, models.ClassStatusScheduled, svc.filter.Status)
	require.NotNil(t, svc.filter.From)
	assert.Equal(t, 2, svc.params.Page)
	assert.Equal(t, 5, svc.params.Size)

	var resp struct {
		Success bool                   `json:"success"`
		Data    dto.Page[models.Class] `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.Items, 1)
}

func TestGetClassInvalidID(t *testing.T) {
	w := doJSON(t, classRouter(&stubClassService{}), http.MethodGet, "/classes/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, errorCode(t, w))
}

func TestGetClassNotFound(t *testing.T) {
	w := doJSON(t, classRouter(&stubClassService{err: apperrors.ErrClassNotFound}), http.MethodGet, "/classes/7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateClass(t *testing.T) {
	start := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		svc := &stubClassService{}
		w := doJSON(t, classRouter(svc), http.MethodPost, "/classes", dto.CreateClassRequest{
			Name: "Spin", StartTime: start, EndTime: start.Add(time.Hour), Capacity: 12,
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, svc.created)
		assert.Equal(t, 12, svc.created.Capacity)
	})

	t.Run("end before start never reaches the service", func(t *testing.T) {
		svc := &stubClassService{}
		w := doJSON(t, classRouter(svc), http.MethodPost, "/classes", dto.CreateClassRequest{
			Name: "Spin", StartTime: start, EndTime: start.Add(-time.Hour), Capacity: 12,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.created)
	})

	t.Run("service conflict", func(t *testing.T) {
		svc := &stubClassService{err: apperrors.ErrStaffInactive}
		w := doJSON(t, classRouter(svc), http.MethodPost, "/classes", dto.CreateClassRequest{
			Name: "Spin", StartTime: start, EndTime: start.Add(time.Hour), Capacity: 12,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeleteClassWithApprovedEnrollments(t *testing.T) {
	svc := &stubClassService{err: apperrors.ErrClassHasEnrollments}
	w := doJSON(t, classRouter(svc), http.MethodDelete, "/classes/5", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int64(5), svc.deleteID)
}

func enrollmentRouter(svc services.IEnrollmentService, id int64, role models.RoleType) *gin.Engine {
	r := gin.New()
	c := NewEnrollmentController(svc)
	g := r.Group("/enrollments", withActor(id, role))
	g.POST("", c.CreateEnrollment)
	g.PATCH("/:id", c.UpdateEnrollment)
	return r
}

func TestCreateEnrollmentPassesActor(t *testing.T) {
	svc := &stubEnrollmentService{}
	w := doJSON(t, enrollmentRouter(svc, 100, models.RoleCustomer), http.MethodPost, "/enrollments",
		dto.CreateEnrollmentRequest{ClassID: 4})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.Actor{UserID: 100, Role: models.RoleCustomer}, svc.actor)
}

func TestCreateEnrollmentClassFull(t *testing.T) {
	svc := &stubEnrollmentService{err: apperrors.ErrClassFull}
	w := doJSON(t, enrollmentRouter(svc, 100, models.RoleCustomer), http.MethodPost, "/enrollments",
		dto.CreateEnrollmentRequest{ClassID: 4})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrorCodeConflict, errorCode(t, w))
}

func TestUpdateEnrollmentRejectsUnknownStatus(t *testing.T) {
	svc := &stubEnrollmentService{}
	w := doJSON(t, enrollmentRouter(svc, 1, models.RoleAdmin), http.MethodPatch, "/enrollments/3",
		map[string]string{"status": "archived"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.update)
}

func TestUpdateEnrollmentForbidden(t *testing.T) {
	svc := &stubEnrollmentService{err: apperrors.NewForbiddenError("Members may only cancel their enrollments")}
	w := doJSON(t, enrollmentRouter(svc, 100, models.RoleCustomer), http.MethodPatch, "/enrollments/3",
		dto.UpdateEnrollmentRequest{Status: "approved"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestActorMissing(t *testing.T) {
	r := gin.New()
	r.POST("/enrollments", NewEnrollmentController(&stubEnrollmentService{}).CreateEnrollment)
	w := doJSON(t, r, http.MethodPost, "/enrollments", dto.CreateEnrollmentRequest{ClassID: 1})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	for _, tc := range []struct {
		name   string
		err    error
		status int
	}{
		{"up", nil, http.StatusOK},
		{"down", errors.New("connection refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthController(stubPinger{err: tc.err}).Health)
			w := doJSON(t, r, http.MethodGet, "/health", nil)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

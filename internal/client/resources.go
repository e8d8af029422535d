package client

import (
	"context"
	"io"
	"net/http"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
)

// AuthAPI maps /auth endpoints
type AuthAPI struct{ c *Client }

// Login exchanges credentials for a token pair. It does not store the tokens.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := a.c.send(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   dto.LoginRequest{Email: email, Password: password},
		noAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := a.c.send(ctx, call{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   dto.RefreshTokenRequest{RefreshToken: refreshToken},
		noAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) Logout(ctx context.Context, refreshToken string) error {
	return a.c.send(ctx, call{
		method: http.MethodPost,
		path:   "/auth/logout",
		body:   dto.RefreshTokenRequest{RefreshToken: refreshToken},
		noAuth: true,
	}, nil)
}

// Me returns the signed-in user
func (a *AuthAPI) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := a.c.send(ctx, call{method: http.MethodGet, path: "/auth/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClassesAPI maps /admin/classes
type ClassesAPI struct{ c *Client }

const classesPath = "/admin/classes"

func (a *ClassesAPI) List(ctx context.Context, f models.ClassFilter, p models.ListParams) (*dto.Page[models.Class], error) {
	q := newValues(p)
	q.str("search", f.Search)
	q.id("instructorId", f.InstructorID)
	q.str("status", string(f.Status))
	q.when("from", f.From)
	q.when("to", f.To)

	var out dto.Page[models.Class]
	if err := a.c.send(ctx, call{method: http.MethodGet, path: classesPath, query: q.Values}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ClassesAPI) Get(ctx context.Context, id int64) (*models.Class, error) {
	var out models.Class
	if err := a.c.send(ctx, call{method: http.MethodGet, path: idPath(classesPath, id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ClassesAPI) Create(ctx context.Context, req *dto.CreateClassRequest) (*models.Class, error) {
	var out models.Class
	if err := a.c.send(ctx, call{method: http.MethodPost, path: classesPath, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ClassesAPI) Update(ctx context.Context, id int64, req *dto.UpdateClassRequest) (*models.Class, error) {
	var out models.Class
	if err := a.c.send(ctx, call{method: http.MethodPatch, path: idPath(classesPath, id), body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ClassesAPI) Delete(ctx context.Context, id int64) error {
	return a.c.send(ctx, call{method: http.MethodDelete, path: idPath(classesPath, id)}, nil)
}

// StaffAPI maps /admin/staff and the nested skill endpoints
type StaffAPI struct{ c *Client }

const staffPath = "/admin/staff"

func (a *StaffAPI) List(ctx context.Context, f models.StaffFilter, p models.ListParams) (*dto.Page[models.Staff], error) {
	q := newValues(p)
	q.str("search", f.Search)
	q.flag("isActive", f.IsActive)
	q.str("skillStatus", string(f.SkillStatus))

	var out dto.Page[models.Staff]
	if err := a.c.send(ctx, call{method: http.MethodGet, path: staffPath, query: q.Values}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *StaffAPI) Get(ctx context.Context, id int64) (*models.Staff, error) {
	var out models.Staff
	if err := a.c.send(ctx, call{method: http.MethodGet, path: idPath(staffPath, id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *StaffAPI) Create(ctx context.Context, req *dto.CreateStaffRequest) (*models.Staff, error) {
	var out models.Staff
	if err := a.c.send(ctx, call{method: http.MethodPost, path: staffPath, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *StaffAPI) Update(ctx context.Context, id int64, req *dto.UpdateStaffRequest) (*models.Staff, error) {
	var out models.Staff
	if err := a.c.send(ctx, call{method: http.MethodPatch, path: idPath(staffPath, id), body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *StaffAPI) Delete(ctx context.Context, id int64) error {
	return a.c.send(ctx, call{method: http.MethodDelete, path: idPath(staffPath, id)}, nil)
}

// AddSkill submits a skill for review
func (a *StaffAPI) AddSkill(ctx context.Context, staffID int64, name string) (*models.Skill, error) {
	var out models.Skill
	err := a.c.send(ctx, call{
		method: http.MethodPost,
		path:   idPath(staffPath, staffID) + "/skills",
		body:   dto.AddSkillRequest{Name: name},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReviewSkill approves or rejects a pending skill
func (a *StaffAPI) ReviewSkill(ctx context.Context, staffID, skillID int64, status models.SkillStatus) (*models.Skill, error) {
	var out models.Skill
	err := a.c.send(ctx, call{
		method: http.MethodPatch,
		path:   idPath(idPath(staffPath, staffID)+"/skills", skillID),
		body:   dto.ReviewSkillRequest{Status: string(status)},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *StaffAPI) DeleteSkill(ctx context.Context, staffID, skillID int64) error {
	return a.c.send(ctx, call{
		method: http.MethodDelete,
		path:   idPath(idPath(staffPath, staffID)+"/skills", skillID),
	}, nil)
}

// UsersAPI maps /admin/users
type UsersAPI struct{ c *Client }

const usersPath = "/admin/users"

func (a *UsersAPI) List(ctx context.Context, f models.UserFilter, p models.ListParams) (*dto.Page[models.User], error) {
	q := newValues(p)
	q.str("search", f.Search)
	q.str("role", string(f.Role))
	q.flag("isActive", f.IsActive)

	var out dto.Page[models.User]
	if err := a.c.send(ctx, call{method: http.MethodGet, path: usersPath, query: q.Values}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *UsersAPI) Get(ctx context.Context, id int64) (*models.User, error) {
	var out models.User
	if err := a.c.send(ctx, call{method: http.MethodGet, path: idPath(usersPath, id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *UsersAPI) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	var out models.User
	if err := a.c.send(ctx, call{method: http.MethodPost, path: usersPath, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *UsersAPI) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	var out models.User
	if err := a.c.send(ctx, call{method: http.MethodPatch, path: idPath(usersPath, id), body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *UsersAPI) Delete(ctx context.Context, id int64) error {
	return a.c.send(ctx, call{method: http.MethodDelete, path: idPath(usersPath, id)}, nil)
}

// EnrollmentsAPI maps /customer/enrollments
type EnrollmentsAPI struct{ c *Client }

const enrollmentsPath = "/customer/enrollments"

func (a *EnrollmentsAPI) List(ctx context.Context, f models.EnrollmentFilter, p models.ListParams) (*dto.Page[models.Enrollment], error) {
	q := newValues(p)
	q.id("classId", f.ClassID)
	q.id("userId", f.UserID)
	q.str("status", string(f.Status))

	var out dto.Page[models.Enrollment]
	if err := a.c.send(ctx, call{method: http.MethodGet, path: enrollmentsPath, query: q.Values}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EnrollmentsAPI) Get(ctx context.Context, id int64) (*models.Enrollment, error) {
	var out models.Enrollment
	if err := a.c.send(ctx, call{method: http.MethodGet, path: idPath(enrollmentsPath, id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EnrollmentsAPI) Create(ctx context.Context, req *dto.CreateEnrollmentRequest) (*models.Enrollment, error) {
	var out models.Enrollment
	if err := a.c.send(ctx, call{method: http.MethodPost, path: enrollmentsPath, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus moves an enrollment to a new lifecycle status
func (a *EnrollmentsAPI) UpdateStatus(ctx context.Context, id int64, req *dto.UpdateEnrollmentRequest) (*models.Enrollment, error) {
	var out models.Enrollment
	if err := a.c.send(ctx, call{method: http.MethodPatch, path: idPath(enrollmentsPath, id), body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EnrollmentsAPI) Delete(ctx context.Context, id int64) error {
	return a.c.send(ctx, call{method: http.MethodDelete, path: idPath(enrollmentsPath, id)}, nil)
}

// VideosAPI maps /videos
type VideosAPI struct{ c *Client }

const videosPath = "/videos"

func (a *VideosAPI) List(ctx context.Context, f models.VideoFilter, p models.ListParams) (*dto.Page[models.Video], error) {
	q := newValues(p)
	q.str("search", f.Search)
	q.str("category", f.Category)
	q.str("difficulty", string(f.Difficulty))

	var out dto.Page[models.Video]
	if err := a.c.send(ctx, call{method: http.MethodGet, path: videosPath, query: q.Values}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *VideosAPI) Get(ctx context.Context, id int64) (*models.Video, error) {
	var out models.Video
	if err := a.c.send(ctx, call{method: http.MethodGet, path: idPath(videosPath, id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *VideosAPI) Create(ctx context.Context, req *dto.CreateVideoRequest) (*models.Video, error) {
	var out models.Video
	if err := a.c.send(ctx, call{method: http.MethodPost, path: videosPath, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *VideosAPI) Update(ctx context.Context, id int64, req *dto.UpdateVideoRequest) (*models.Video, error) {
	var out models.Video
	if err := a.c.send(ctx, call{method: http.MethodPatch, path: idPath(videosPath, id), body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *VideosAPI) Delete(ctx context.Context, id int64) error {
	return a.c.send(ctx, call{method: http.MethodDelete, path: idPath(videosPath, id)}, nil)
}

// UploadFile sends the video file as multipart form field "file"
func (a *VideosAPI) UploadFile(ctx context.Context, id int64, fileName string, r io.Reader) (*models.Video, error) {
	var out models.Video
	err := a.c.send(ctx, call{
		method: http.MethodPost,
		path:   idPath(videosPath, id) + "/file",
		file:   &fileUpload{name: fileName, reader: r},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

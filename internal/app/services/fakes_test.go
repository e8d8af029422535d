package services

import (
	"context"
	"mime/multipart"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
)

var testLogger = zerolog.Nop()

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[int64]*models.User{}}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context, filter models.UserFilter, _ models.ListParams) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if filter.Role != "" && u.RoleType != filter.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, role models.RoleType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.RoleType == role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) IsActive(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return ok && u.IsActive, nil
}

type fakeTokenRepo struct {
	mu      sync.Mutex
	tokens  map[string]int64
	revoked map[string]bool
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]int64{}, revoked: map[string]bool{}}
}

func (r *fakeTokenRepo) CreateToken(_ context.Context, token string, userID int64, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = userID
	return nil
}

func (r *fakeTokenRepo) GetTokenByValue(_ context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.tokens[token]
	if !ok {
		return 0, apperrors.ErrTokenNotFound
	}
	if r.revoked[token] {
		return 0, apperrors.ErrTokenRevoked
	}
	return id, nil
}

func (r *fakeTokenRepo) RevokeToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok || r.revoked[token] {
		return apperrors.ErrTokenNotFound
	}
	r.revoked[token] = true
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, id := range r.tokens {
		if id == userID {
			r.revoked[token] = true
		}
	}
	return nil
}

func (r *fakeTokenRepo) CleanupExpiredTokens(context.Context) (int64, error) { return 0, nil }

type fakeClassRepo struct {
	mu      sync.Mutex
	nextID  int64
	classes map[int64]*models.Class
}

func newFakeClassRepo(classes ...*models.Class) *fakeClassRepo {
	r := &fakeClassRepo{classes: map[int64]*models.Class{}}
	for _, c := range classes {
		cp := *c
		r.classes[c.ID] = &cp
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *fakeClassRepo) Create(_ context.Context, c *models.Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.classes[c.ID] = &cp
	return nil
}

func (r *fakeClassRepo) GetByID(_ context.Context, id int64) (*models.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return nil, apperrors.ErrClassNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClassRepo) List(_ context.Context, _ models.ClassFilter, _ models.ListParams) ([]models.Class, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Class
	for _, c := range r.classes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeClassRepo) Update(_ context.Context, c *models.Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[c.ID]; !ok {
		return apperrors.ErrClassNotFound
	}
	cp := *c
	r.classes[c.ID] = &cp
	return nil
}

func (r *fakeClassRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[id]; !ok {
		return apperrors.ErrClassNotFound
	}
	delete(r.classes, id)
	return nil
}

func (r *fakeClassRepo) HasScheduledForInstructor(_ context.Context, staffID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.classes {
		if c.InstructorID != nil && *c.InstructorID == staffID && c.Status == models.ClassStatusScheduled {
			return true, nil
		}
	}
	return false, nil
}

type fakeStaffRepo struct {
	mu          sync.Mutex
	nextID      int64
	nextSkillID int64
	staff       map[int64]*models.Staff
}

func newFakeStaffRepo(staff ...*models.Staff) *fakeStaffRepo {
	r := &fakeStaffRepo{staff: map[int64]*models.Staff{}}
	for _, s := range staff {
		cp := *s
		r.staff[s.ID] = &cp
		if s.ID > r.nextID {
			r.nextID = s.ID
		}
	}
	return r
}

func (r *fakeStaffRepo) Create(_ context.Context, s *models.Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	for i := range s.Skills {
		r.nextSkillID++
		s.Skills[i].ID = r.nextSkillID
		s.Skills[i].StaffID = s.ID
	}
	cp := *s
	cp.Skills = append([]models.Skill(nil), s.Skills...)
	r.staff[s.ID] = &cp
	return nil
}

func (r *fakeStaffRepo) GetByID(_ context.Context, id int64) (*models.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.staff[id]
	if !ok {
		return nil, apperrors.ErrStaffNotFound
	}
	cp := *s
	cp.Skills = append([]models.Skill(nil), s.Skills...)
	return &cp, nil
}

func (r *fakeStaffRepo) List(_ context.Context, _ models.StaffFilter, _ models.ListParams) ([]models.Staff, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Staff
	for _, s := range r.staff {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeStaffRepo) Update(_ context.Context, s *models.Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.staff[s.ID]
	if !ok {
		return apperrors.ErrStaffNotFound
	}
	cp := *s
	cp.Skills = existing.Skills
	r.staff[s.ID] = &cp
	return nil
}

func (r *fakeStaffRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.staff[id]; !ok {
		return apperrors.ErrStaffNotFound
	}
	delete(r.staff, id)
	return nil
}

func (r *fakeStaffRepo) AddSkill(_ context.Context, skill *models.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.staff[skill.StaffID]
	if !ok {
		return apperrors.ErrStaffNotFound
	}
	for _, existing := range s.Skills {
		if existing.Name == skill.Name {
			return apperrors.ErrSkillAlreadyExists
		}
	}
	r.nextSkillID++
	skill.ID = r.nextSkillID
	skill.Status = models.SkillPending
	s.Skills = append(s.Skills, *skill)
	return nil
}

func (r *fakeStaffRepo) GetSkill(_ context.Context, staffID, skillID int64) (*models.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.staff[staffID]; ok {
		for _, sk := range s.Skills {
			if sk.ID == skillID {
				cp := sk
				return &cp, nil
			}
		}
	}
	return nil, apperrors.ErrSkillNotFound
}

func (r *fakeStaffRepo) UpdateSkillStatus(_ context.Context, skill *models.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.staff[skill.StaffID]
	if !ok {
		return apperrors.ErrSkillNotFound
	}
	for i := range s.Skills {
		if s.Skills[i].ID == skill.ID {
			if s.Skills[i].Status != models.SkillPending {
				return apperrors.ErrSkillNotPending
			}
			now := time.Now()
			s.Skills[i].Status = skill.Status
			s.Skills[i].ReviewedAt = &now
			skill.ReviewedAt = &now
			return nil
		}
	}
	return apperrors.ErrSkillNotFound
}

func (r *fakeStaffRepo) DeleteSkill(_ context.Context, staffID, skillID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.staff[staffID]; ok {
		for i := range s.Skills {
			if s.Skills[i].ID == skillID {
				s.Skills = append(s.Skills[:i], s.Skills[i+1:]...)
				return nil
			}
		}
	}
	return apperrors.ErrSkillNotFound
}

// fakeEnrollmentRepo mirrors the capacity check of the SQL insert
type fakeEnrollmentRepo struct {
	mu          sync.Mutex
	nextID      int64
	classes     *fakeClassRepo
	enrollments map[int64]*models.Enrollment
}

func newFakeEnrollmentRepo(classes *fakeClassRepo, enrollments ...*models.Enrollment) *fakeEnrollmentRepo {
	r := &fakeEnrollmentRepo{classes: classes, enrollments: map[int64]*models.Enrollment{}}
	for _, e := range enrollments {
		cp := *e
		r.enrollments[e.ID] = &cp
		if e.ID > r.nextID {
			r.nextID = e.ID
		}
	}
	return r
}

func (r *fakeEnrollmentRepo) countLocked(classID int64, statuses ...models.EnrollmentStatus) int {
	n := 0
	for _, e := range r.enrollments {
		if e.ClassID != classID {
			continue
		}
		for _, s := range statuses {
			if e.Status == s {
				n++
				break
			}
		}
	}
	return n
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, e *models.Enrollment) error {
	class, err := r.classes.GetByID(ctx, e.ClassID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countLocked(e.ClassID, models.EnrollmentPending, models.EnrollmentApproved) >= class.Capacity {
		return apperrors.ErrClassFull
	}
	r.nextID++
	e.ID = r.nextID
	cp := *e
	r.enrollments[e.ID] = &cp
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEnrollmentRepo) List(_ context.Context, filter models.EnrollmentFilter, _ models.ListParams) ([]models.Enrollment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Enrollment
	for _, e := range r.enrollments {
		if filter.UserID != 0 && e.UserID != filter.UserID {
			continue
		}
		if filter.ClassID != 0 && e.ClassID != filter.ClassID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeEnrollmentRepo) UpdateStatus(_ context.Context, e *models.Enrollment, from models.EnrollmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.enrollments[e.ID]
	if !ok {
		return apperrors.ErrEnrollmentNotFound
	}
	if existing.Status != from {
		return apperrors.ErrInvalidStatusTransition
	}
	cp := *e
	r.enrollments[e.ID] = &cp
	return nil
}

// Approve holds mu across the seat count and the update like the row lock
func (r *fakeEnrollmentRepo) Approve(ctx context.Context, e *models.Enrollment, from models.EnrollmentStatus) error {
	class, err := r.classes.GetByID(ctx, e.ClassID)
	if err != nil {
		return err
	}
	if class.Status != models.ClassStatusScheduled {
		return apperrors.ErrClassNotOpen
	}
	e.Status = models.EnrollmentApproved
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countLocked(e.ClassID, models.EnrollmentApproved) >= class.Capacity {
		return apperrors.ErrClassFull
	}
	existing, ok := r.enrollments[e.ID]
	if !ok {
		return apperrors.ErrEnrollmentNotFound
	}
	if existing.Status != from {
		return apperrors.ErrInvalidStatusTransition
	}
	cp := *e
	r.enrollments[e.ID] = &cp
	return nil
}

func (r *fakeEnrollmentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enrollments[id]; !ok {
		return apperrors.ErrEnrollmentNotFound
	}
	delete(r.enrollments, id)
	return nil
}

func (r *fakeEnrollmentRepo) CountByClass(_ context.Context, classID int64, statuses ...models.EnrollmentStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked(classID, statuses...), nil
}

func (r *fakeEnrollmentRepo) HasActive(_ context.Context, classID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.ClassID == classID && e.UserID == userID && e.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

type fakeVideoRepo struct {
	mu     sync.Mutex
	nextID int64
	videos map[int64]*models.Video
}

func newFakeVideoRepo(videos ...*models.Video) *fakeVideoRepo {
	r := &fakeVideoRepo{videos: map[int64]*models.Video{}}
	for _, v := range videos {
		cp := *v
		r.videos[v.ID] = &cp
		if v.ID > r.nextID {
			r.nextID = v.ID
		}
	}
	return r
}

func (r *fakeVideoRepo) Create(_ context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	v.ID = r.nextID
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) GetByID(_ context.Context, id int64) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, apperrors.ErrVideoNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) List(_ context.Context, filter models.VideoFilter, _ models.ListParams) ([]models.Video, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Video
	for _, v := range r.videos {
		if filter.PublishedOnly && !v.IsPublished {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVideoRepo) Update(_ context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[v.ID]; !ok {
		return apperrors.ErrVideoNotFound
	}
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[id]; !ok {
		return apperrors.ErrVideoNotFound
	}
	delete(r.videos, id)
	return nil
}

type fakeStorage struct {
	saved   []string
	deleted []string
	err     error
}

func (s *fakeStorage) SaveFileWithPath(fh *multipart.FileHeader, subPath string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	url := "/uploads/" + subPath + "/" + fh.Filename
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *fakeStorage) DeleteFile(fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}

func (s *fakeStorage) GetFullPath(fileURL string) string { return fileURL }

func ptr[T any](v T) *T { return &v }

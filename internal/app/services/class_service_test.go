package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

var classStart = time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestClassService() (*ClassService, *fakeClassRepo, *fakeEnrollmentRepo) {
	classes := newFakeClassRepo(&models.Class{
		ID: 1, Name: "Spin", StartTime: classStart, EndTime: classStart.Add(time.Hour),
		Capacity: 3, Status: models.ClassStatusScheduled,
	})
	staff := newFakeStaffRepo(
		&models.Staff{ID: 10, FirstName: "Alex", LastName: "Stone", Email: "alex@gym.example", IsActive: true},
		&models.Staff{ID: 11, FirstName: "Sam", LastName: "Idle", Email: "sam@gym.example"},
	)
	enrollments := newFakeEnrollmentRepo(classes,
		&models.Enrollment{ID: 1, ClassID: 1, UserID: 100, Status: models.EnrollmentApproved},
		&models.Enrollment{ID: 2, ClassID: 1, UserID: 101, Status: models.EnrollmentPending},
	)
	return NewClassService(classes, staff, enrollments, testLogger), classes, enrollments
}

func TestCreateClassValidation(t *testing.T) {
	svc, _, _ := newTestClassService()
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.CreateClassRequest{
		Name: "", StartTime: classStart, EndTime: classStart.Add(-time.Hour), Capacity: 0,
	})
	var form *validation.FormError
	require.ErrorAs(t, err, &form)
	assert.NotEmpty(t, form.Field("name"))
	assert.NotEmpty(t, form.Field("capacity"))
	assert.NotEmpty(t, form.Field("endTime"))
}

func TestCreateClassChecksInstructor(t *testing.T) {
	svc, _, _ := newTestClassService()
	ctx := context.Background()
	req := &dto.CreateClassRequest{Name: "Yoga", StartTime: classStart, EndTime: classStart.Add(time.Hour), Capacity: 10}

	req.InstructorID = ptr(int64(11))
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrStaffInactive)

	req.InstructorID = ptr(int64(99))
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrStaffNotFound)

	req.InstructorID = ptr(int64(10))
	class, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.ClassStatusScheduled, class.Status)
}

func TestUpdateClassCapacityBelowActive(t *testing.T) {
	svc, _, _ := newTestClassService()
	ctx := context.Background()

	_, err := svc.Update(ctx, 1, &dto.UpdateClassRequest{Capacity: ptr(1)})
	assert.ErrorIs(t, err, apperrors.ErrCapacityBelowActive)

	class, err := svc.Update(ctx, 1, &dto.UpdateClassRequest{Capacity: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, class.Capacity)

	_, err = svc.Update(ctx, 1, &dto.UpdateClassRequest{EndTime: ptr(classStart.Add(-time.Minute))})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDeleteClassWithApprovedEnrollments(t *testing.T) {
	svc, classes, enrollments := newTestClassService()
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, 1), apperrors.ErrClassHasEnrollments)

	delete(enrollments.enrollments, 1)
	require.NoError(t, svc.Delete(ctx, 1))
	_, err := classes.GetByID(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

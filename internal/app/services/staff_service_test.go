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
)

func TestCreateStaffDedupesSkills(t *testing.T) {
	svc := NewStaffService(newFakeStaffRepo(), newFakeClassRepo(), testLogger)

	staff, err := svc.Create(context.Background(), &dto.CreateStaffRequest{
		FirstName: "Alex", LastName: "Stone", Email: "Alex@Gym.Example",
		Skills: []string{"Yoga", " yoga ", "Kettle  bell"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alex@gym.example", staff.Email)
	require.Len(t, staff.Skills, 2)
	assert.Equal(t, "Kettle bell", staff.Skills[1].Name)
	for _, sk := range staff.Skills {
		assert.Equal(t, models.SkillPending, sk.Status)
	}
}

func TestReviewSkillOnlyFromPending(t *testing.T) {
	staffRepo := newFakeStaffRepo(&models.Staff{ID: 1, FirstName: "Alex", LastName: "Stone", Email: "a@gym.example", IsActive: true})
	svc := NewStaffService(staffRepo, newFakeClassRepo(), testLogger)
	ctx := context.Background()

	skill, err := svc.AddSkill(ctx, 1, &dto.AddSkillRequest{Name: "Pilates"})
	require.NoError(t, err)

	reviewed, err := svc.ReviewSkill(ctx, 1, skill.ID, &dto.ReviewSkillRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.SkillApproved, reviewed.Status)
	assert.NotNil(t, reviewed.ReviewedAt)

	_, err = svc.ReviewSkill(ctx, 1, skill.ID, &dto.ReviewSkillRequest{Status: "rejected"})
	assert.ErrorIs(t, err, apperrors.ErrSkillNotPending)

	_, err = svc.ReviewSkill(ctx, 1, skill.ID, &dto.ReviewSkillRequest{Status: "pending"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, svc.DeleteSkill(ctx, 1, skill.ID))
	_, err = staffRepo.GetSkill(ctx, 1, skill.ID)
	assert.ErrorIs(t, err, apperrors.ErrSkillNotFound)
}

func TestDeleteStaffWithScheduledClasses(t *testing.T) {
	staffRepo := newFakeStaffRepo(&models.Staff{ID: 1, FirstName: "Alex", LastName: "Stone", Email: "a@gym.example", IsActive: true})
	classes := newFakeClassRepo(&models.Class{
		ID: 1, Name: "Spin", InstructorID: ptr(int64(1)), StartTime: classStart, EndTime: classStart.Add(time.Hour),
		Capacity: 5, Status: models.ClassStatusScheduled,
	})
	svc := NewStaffService(staffRepo, classes, testLogger)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, 1), apperrors.ErrStaffHasClasses)

	classes.classes[1].Status = models.ClassStatusCancelled
	assert.NoError(t, svc.Delete(ctx, 1))
}

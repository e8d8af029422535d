package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

func formFields(t *testing.T, err error) *validation.FormError {
	t.Helper()
	var form *validation.FormError
	require.True(t, errors.As(err, &form), "expected a form error, got %v", err)
	return form
}

func TestParseTimeLayouts(t *testing.T) {
	want := time.Date(2030, 5, 1, 9, 30, 0, 0, time.Local)
	for _, raw := range []string{"2030-05-01 09:30", "2030-05-01T09:30", want.Format(time.RFC3339)} {
		got, err := parseTime("startTime", raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
	}

	_, err := parseTime("startTime", "tomorrow")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	empty, err := parseTime("startTime", " ")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestClassFormCollectsAllFieldErrors(t *testing.T) {
	_, err := ClassForm{Name: "", Start: "2030-05-01 10:00", End: "bad", Capacity: 0}.Request()

	form := formFields(t, err)
	assert.NotEmpty(t, form.Field("name"))
	assert.NotEmpty(t, form.Field("endTime"))
	assert.NotEmpty(t, form.Field("capacity"))
}

func TestClassPatchOnlyChecksEditedFields(t *testing.T) {
	capacity := 30
	req, err := ClassPatch{Capacity: &capacity}.Request()
	require.NoError(t, err)
	assert.Nil(t, req.Name)
	assert.Equal(t, 30, *req.Capacity)

	capacity = 0
	_, err = ClassPatch{Capacity: &capacity}.Request()
	assert.NotEmpty(t, formFields(t, err).Field("capacity"))
}

func TestClassPatchRejectsClearedTimes(t *testing.T) {
	blank, start := "  ", "2030-05-01 10:00"

	_, err := ClassPatch{Start: &blank}.Request()
	assert.Equal(t, "startTime cannot be empty", formFields(t, err).Field("startTime"))

	_, err = ClassPatch{Start: &start, End: &blank}.Request()
	form := formFields(t, err)
	assert.Equal(t, "endTime cannot be empty", form.Field("endTime"))
	assert.Empty(t, form.Field("startTime"))

	req, err := ClassPatch{Start: &start}.Request()
	require.NoError(t, err)
	assert.False(t, req.StartTime.IsZero())
	assert.Nil(t, req.EndTime)
}

func TestUserFormDefaults(t *testing.T) {
	req, err := UserForm{Email: " New@Gym.Example ", Password: "secret123", FirstName: "Nina", LastName: "New"}.Request()
	require.NoError(t, err)
	assert.Equal(t, "new@gym.example", req.Email)
	assert.Equal(t, "CUSTOMER", req.RoleType)
	assert.Nil(t, req.Phone)

	_, err = UserForm{Email: "x@gym.example", Password: "lettersonly", FirstName: "Al", LastName: "Bo", Role: "owner"}.Request()
	form := formFields(t, err)
	assert.Equal(t, "password must contain at least one letter and one digit", form.Field("password"))
	assert.NotEmpty(t, form.Field("roleType"))
}

func TestVideoFormDuration(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "900", want: 900},
		{raw: "15m", want: 900},
		{raw: "1h30m", want: 5400},
		{raw: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req, err := VideoForm{Title: "Core", Category: "Core", Difficulty: "Beginner", Duration: tt.raw}.Request()
			if tt.wantErr {
				assert.NotEmpty(t, formFields(t, err).Field("durationSeconds"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.DurationSeconds)
			assert.Equal(t, "beginner", req.Difficulty)
			assert.Equal(t, "core", req.Category)
		})
	}
}

func TestEnrollmentFormSelfEnrollment(t *testing.T) {
	req, err := EnrollmentForm{ClassID: 3}.Request()
	require.NoError(t, err)
	assert.Nil(t, req.UserID)
	assert.Nil(t, req.Note)

	_, err = EnrollmentForm{}.Request()
	assert.NotEmpty(t, formFields(t, err).Field("classId"))
}

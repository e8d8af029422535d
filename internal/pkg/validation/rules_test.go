package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
)

func TestValidateTimeWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateTimeWindow(start, start.Add(time.Hour)))
	assert.ErrorIs(t, ValidateTimeWindow(start, start), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, ValidateTimeWindow(start, start.Add(-time.Minute)), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, ValidateTimeWindow(time.Time{}, start), apperrors.ErrValidationFailed)
}

func TestValidateCapacity(t *testing.T) {
	assert.NoError(t, ValidateCapacity(1))
	assert.NoError(t, ValidateCapacity(CapacityMax))
	assert.Error(t, ValidateCapacity(0))
	assert.Error(t, ValidateCapacity(-3))
	assert.Error(t, ValidateCapacity(CapacityMax+1))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Lift2024"))
	assert.Error(t, ValidatePassword("short1"))
	assert.Error(t, ValidatePassword("lettersonly"))
	assert.Error(t, ValidatePassword("1234567890"))
}

func TestValidateNameAndEmail(t *testing.T) {
	assert.Error(t, ValidateName("name", "   "))
	assert.Error(t, ValidateName("name", "A"))
	assert.NoError(t, ValidateName("name", "Spin"))
	assert.NoError(t, ValidateEmail("coach@gym.example"))
	assert.Error(t, ValidateEmail("coach@"))
}

func TestStructUsesBindingTags(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	req := dto.CreateClassRequest{
		Name:      "",
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
		Capacity:  0,
	}

	err := Struct(req)
	require.Error(t, err)

	var form *FormError
	require.True(t, errors.As(err, &form))
	assert.NotEmpty(t, form.Field("name"))
	assert.NotEmpty(t, form.Field("endTime"))
	assert.NotEmpty(t, form.Field("capacity"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestMergeAddsRuleErrors(t *testing.T) {
	err := Merge(nil, ValidateCapacity(0), nil)
	var form *FormError
	require.True(t, errors.As(err, &form))
	assert.Len(t, form.Fields, 1)
	assert.Equal(t, "capacity", form.Fields[0].Field)

	assert.NoError(t, Merge(nil))
}

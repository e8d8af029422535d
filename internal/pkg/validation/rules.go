package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
)

// Validation rule patterns and bounds
var (
	EmailPattern = `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`
	PhonePattern = `^\+?[0-9 ()\-]{6,30}$`

	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 100

	CapacityMin = 1
	CapacityMax = 500
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
	Phone *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
	Phone: regexp.MustCompile(PhonePattern),
}

// StringValidation checks one string field
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	value := strings.TrimSpace(v.Value)
	if value == "" {
		return !v.Required
	}

	n := len([]rune(value))
	if v.MinLen > 0 && n < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && n > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(value) {
		return false
	}

	return true
}

// NumericValidation checks an integer against inclusive bounds
type NumericValidation struct {
	Value int
	Min   int
	Max   int
}

// NewNumericValidation creates a new numeric validation
func NewNumericValidation(value int) *NumericValidation {
	return &NumericValidation{Value: value}
}

// WithMin sets minimum value
func (v *NumericValidation) WithMin(min int) *NumericValidation {
	v.Min = min
	return v
}

// WithMax sets maximum value
func (v *NumericValidation) WithMax(max int) *NumericValidation {
	v.Max = max
	return v
}

// Validate performs validation
func (v *NumericValidation) Validate() bool {
	if v.Min != 0 && v.Value < v.Min {
		return false
	}
	if v.Max != 0 && v.Value > v.Max {
		return false
	}
	return true
}

// ValidateName checks a required display name
func ValidateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidationError(field, field+" is required")
	}
	if !NewStringValidation(value).WithMinLength(NameMinLength).WithMaxLength(NameMaxLength).Validate() {
		return apperrors.NewValidationError(field, fmt.Sprintf("%s must be between %d and %d characters", field, NameMinLength, NameMaxLength))
	}
	return nil
}

// ValidateEmail checks email format
func ValidateEmail(email string) error {
	if !NewStringValidation(email).WithPattern(CompiledPatterns.Email).Validate() {
		return apperrors.NewValidationError("email", "email must be a valid email address")
	}
	return nil
}

// ValidatePhone checks an optional phone number
func ValidatePhone(phone *string) error {
	if phone == nil {
		return nil
	}
	if !NewStringValidation(*phone).WithRequired(false).WithPattern(CompiledPatterns.Phone).Validate() {
		return apperrors.NewValidationError("phone", "phone must contain only digits, spaces, dashes or parentheses")
	}
	return nil
}

// ValidatePassword requires a minimum length, at least one letter and one digit
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return apperrors.NewValidationError("password", fmt.Sprintf("password must be at least %d characters long", PasswordMinLength))
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.NewValidationError("password", "password must contain at least one letter and one digit")
	}
	return nil
}

// ValidateCapacity checks class capacity bounds
func ValidateCapacity(capacity int) error {
	if !NewNumericValidation(capacity).WithMin(CapacityMin).WithMax(CapacityMax).Validate() {
		return apperrors.NewValidationError("capacity", fmt.Sprintf("capacity must be between %d and %d", CapacityMin, CapacityMax))
	}
	return nil
}

// ValidateTimeWindow requires end to be strictly after start
func ValidateTimeWindow(start, end time.Time) error {
	if start.IsZero() {
		return apperrors.NewValidationError("startTime", "startTime is required")
	}
	if end.IsZero() {
		return apperrors.NewValidationError("endTime", "endTime is required")
	}
	if !end.After(start) {
		return apperrors.NewValidationError("endTime", "endTime must be after startTime")
	}
	return nil
}

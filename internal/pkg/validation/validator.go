package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns a validator that reads the same `binding` tags gin uses,
// so request DTOs can be checked outside of a gin handler.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// FormError lists every failed field of a form
type FormError struct {
	Fields []dto.FieldError
}

func (e *FormError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets callers match apperrors.ErrValidationFailed
func (e *FormError) Unwrap() error {
	return apperrors.ErrValidationFailed
}

// Field returns the message for one field, or "" when it passed
func (e *FormError) Field(name string) string {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message
		}
	}
	return ""
}

// Struct validates v and returns a *FormError when any rule fails
func Struct(v interface{}) error {
	err := GetValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	detail := dto.HandleValidationError(verrs)
	fields, _ := detail.Details.([]dto.FieldError)
	return &FormError{Fields: fields}
}

// Merge folds extra field errors (from hand-written rules) into a FormError
func Merge(err error, extra ...error) error {
	var form *FormError
	if err != nil && !errors.As(err, &form) {
		return err
	}
	if form == nil {
		form = &FormError{}
	}

	for _, e := range extra {
		if e == nil {
			continue
		}
		var ce *apperrors.CustomError
		if errors.As(e, &ce) {
			field, _ := ce.Details["field"].(string)
			if form.Field(field) == "" {
				form.Fields = append(form.Fields, dto.FieldError{Field: field, Message: ce.Message})
			}
			continue
		}
		form.Fields = append(form.Fields, dto.FieldError{Message: e.Error()})
	}

	if len(form.Fields) == 0 {
		return nil
	}
	return form
}

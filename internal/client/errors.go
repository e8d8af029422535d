package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/fitdesk/gymadmin/internal/app/models/dto"
)

// Sentinels matched by callers with errors.Is
var (
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrRateLimited  = errors.New("too many requests")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("api unreachable")
)

// APIError is a non-2xx answer from the API, normalized from its error envelope
type APIError struct {
	Status    int
	Code      dto.ErrorCode
	Message   string
	Field     string
	Fields    []dto.FieldError
	RequestID string
	sentinel  error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (HTTP %d, %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.sentinel
}

// StatusCode exposes the HTTP status to callers that only need the number
func (e *APIError) StatusCode() int {
	return e.Status
}

// FieldErrors returns per-field messages, including a single top-level field
func (e *APIError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Fields)+1)
	for _, f := range e.Fields {
		if f.Field != "" {
			out[f.Field] = f.Message
		}
	}
	if e.Field != "" {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

func sentinelFor(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity,
		status == http.StatusRequestEntityTooLarge:
		return ErrValidation
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	}
	return nil
}

type errorEnvelope struct {
	Error *struct {
		Code    dto.ErrorCode   `json:"code"`
		Message string          `json:"message"`
		Field   string          `json:"field"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// toAPIError builds an APIError from any non-2xx response, even one without
// the JSON envelope (proxies, plain-text 502s).
func toAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{
		Status:    resp.StatusCode(),
		RequestID: resp.Header().Get(RequestIDHeader),
		sentinel:  sentinelFor(resp.StatusCode()),
	}

	var env errorEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil || env.Error == nil {
		apiErr.Message = http.StatusText(resp.StatusCode())
		if apiErr.Message == "" {
			apiErr.Message = "unexpected response"
		}
		return apiErr
	}

	apiErr.Code = env.Error.Code
	apiErr.Message = env.Error.Message
	apiErr.Field = env.Error.Field
	if len(env.Error.Details) > 0 {
		// Details is a field list for form errors and free-form otherwise
		var fields []dto.FieldError
		if json.Unmarshal(env.Error.Details, &fields) == nil {
			apiErr.Fields = fields
		}
	}
	return apiErr
}

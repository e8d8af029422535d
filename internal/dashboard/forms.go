package dashboard

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/pkg/apperrors"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

// Forms are validated with the same binding tags and rules the API applies,
// so a bad form is rejected before any request is sent.

var inputTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04", timeLayout}

func parseTime(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range inputTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewValidationError(field, field+` must look like "2030-05-01 09:00" or RFC3339`)
}

// patchTime parses an edited time. An edited field cannot be cleared: the
// zero time would be sent as 0001-01-01.
func patchTime(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, apperrors.NewValidationError(field, field+" cannot be empty")
	}
	return parseTime(field, raw)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// validateForm runs hand-written rules first, since their messages are more
// specific, then the struct's binding tags for fields the rules left alone.
func validateForm(req interface{}, rules ...error) error {
	merged := validation.Merge(nil, rules...)
	tagged := validation.Struct(req)
	if tagged == nil {
		return merged
	}

	var tagForm *validation.FormError
	if !errors.As(tagged, &tagForm) {
		return tagged
	}
	var form *validation.FormError
	if !errors.As(merged, &form) {
		return tagForm
	}
	for _, f := range tagForm.Fields {
		if form.Field(f.Field) == "" {
			form.Fields = append(form.Fields, f)
		}
	}
	return form
}

// ClassForm is the create-class form as typed
type ClassForm struct {
	Name         string
	Description  string
	InstructorID int64
	Location     string
	Start        string
	End          string
	Capacity     int
}

// Request validates the form and builds the API request
func (f ClassForm) Request() (*dto.CreateClassRequest, error) {
	start, startErr := parseTime("startTime", f.Start)
	end, endErr := parseTime("endTime", f.End)

	req := &dto.CreateClassRequest{
		Name:         strings.TrimSpace(f.Name),
		Description:  optional(f.Description),
		InstructorID: optionalID(f.InstructorID),
		Location:     optional(f.Location),
		StartTime:    start,
		EndTime:      end,
		Capacity:     f.Capacity,
	}

	rules := []error{startErr, endErr, validation.ValidateName("name", req.Name), validation.ValidateCapacity(f.Capacity)}
	if startErr == nil && endErr == nil {
		rules = append(rules, validation.ValidateTimeWindow(start, end))
	}
	if err := validateForm(req, rules...); err != nil {
		return nil, err
	}
	return req, nil
}

// ClassPatch holds only the edited fields of a class
type ClassPatch struct {
	Name         *string
	Description  *string
	InstructorID *int64
	Location     *string
	Start        *string
	End          *string
	Capacity     *int
	Status       *string
}

// Request validates the edited fields. A window with only one end edited is
// checked by the API against the stored other end.
func (p ClassPatch) Request() (*dto.UpdateClassRequest, error) {
	req := &dto.UpdateClassRequest{
		Name:         p.Name,
		Description:  p.Description,
		InstructorID: p.InstructorID,
		Location:     p.Location,
		Capacity:     p.Capacity,
		Status:       p.Status,
	}

	var rules []error
	if p.Start != nil {
		t, err := patchTime("startTime", *p.Start)
		rules = append(rules, err)
		req.StartTime = &t
	}
	if p.End != nil {
		t, err := patchTime("endTime", *p.End)
		rules = append(rules, err)
		req.EndTime = &t
	}
	if req.StartTime != nil && req.EndTime != nil && !req.StartTime.IsZero() && !req.EndTime.IsZero() {
		rules = append(rules, validation.ValidateTimeWindow(*req.StartTime, *req.EndTime))
	}
	if p.Name != nil {
		rules = append(rules, validation.ValidateName("name", *p.Name))
	}
	if p.Capacity != nil {
		rules = append(rules, validation.ValidateCapacity(*p.Capacity))
	}

	if err := validateForm(req, rules...); err != nil {
		return nil, err
	}
	return req, nil
}

// StaffForm is the create-trainer form
type StaffForm struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Bio       string
	Skills    []string
}

func (f StaffForm) Request() (*dto.CreateStaffRequest, error) {
	req := &dto.CreateStaffRequest{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.ToLower(strings.TrimSpace(f.Email)),
		Phone:     optional(f.Phone),
		Bio:       optional(f.Bio),
		Skills:    f.Skills,
	}
	err := validateForm(req,
		validation.ValidateName("firstName", req.FirstName),
		validation.ValidateName("lastName", req.LastName),
		validation.ValidateEmail(req.Email),
		validation.ValidatePhone(req.Phone),
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// StaffPatch holds only the edited trainer fields
type StaffPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Bio       *string
	IsActive  *bool
}

func (p StaffPatch) Request() (*dto.UpdateStaffRequest, error) {
	update := dto.UpdateStaffRequest(p)
	req := &update
	var rules []error
	if p.FirstName != nil {
		rules = append(rules, validation.ValidateName("firstName", *p.FirstName))
	}
	if p.LastName != nil {
		rules = append(rules, validation.ValidateName("lastName", *p.LastName))
	}
	if p.Email != nil {
		rules = append(rules, validation.ValidateEmail(*p.Email))
	}
	rules = append(rules, validation.ValidatePhone(p.Phone))
	if err := validateForm(req, rules...); err != nil {
		return nil, err
	}
	return req, nil
}

// UserForm is the create-account form. It is also the row shape of user imports.
type UserForm struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
}

func (f UserForm) Request() (*dto.CreateUserRequest, error) {
	role := strings.ToUpper(strings.TrimSpace(f.Role))
	if role == "" {
		role = "CUSTOMER"
	}
	req := &dto.CreateUserRequest{
		Email:     strings.ToLower(strings.TrimSpace(f.Email)),
		Password:  f.Password,
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Phone:     optional(f.Phone),
		RoleType:  role,
	}
	err := validateForm(req,
		validation.ValidateEmail(req.Email),
		validation.ValidatePassword(req.Password),
		validation.ValidateName("firstName", req.FirstName),
		validation.ValidateName("lastName", req.LastName),
		validation.ValidatePhone(req.Phone),
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// UserPatch holds only the edited account fields
type UserPatch struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Phone     *string
	Role      *string
	IsActive  *bool
}

func (p UserPatch) Request() (*dto.UpdateUserRequest, error) {
	req := &dto.UpdateUserRequest{
		Email:     p.Email,
		Password:  p.Password,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		IsActive:  p.IsActive,
	}
	if p.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*p.Role))
		req.RoleType = &role
	}

	var rules []error
	if p.Email != nil {
		rules = append(rules, validation.ValidateEmail(*p.Email))
	}
	if p.Password != nil {
		rules = append(rules, validation.ValidatePassword(*p.Password))
	}
	if p.FirstName != nil {
		rules = append(rules, validation.ValidateName("firstName", *p.FirstName))
	}
	if p.LastName != nil {
		rules = append(rules, validation.ValidateName("lastName", *p.LastName))
	}
	rules = append(rules, validation.ValidatePhone(p.Phone))
	if err := validateForm(req, rules...); err != nil {
		return nil, err
	}
	return req, nil
}

// parseDuration accepts "900", "15m" or "1h30m" and returns seconds
func parseDuration(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, apperrors.NewValidationError("durationSeconds", `duration must be seconds or a duration like "15m"`)
	}
	return int(d.Seconds()), nil
}

// VideoForm is the create-video form
type VideoForm struct {
	Title        string
	Description  string
	Category     string
	Difficulty   string
	Duration     string
	VideoURL     string
	ThumbnailURL string
	InstructorID int64
	Publish      bool
}

func (f VideoForm) Request() (*dto.CreateVideoRequest, error) {
	seconds, durErr := parseDuration(f.Duration)
	req := &dto.CreateVideoRequest{
		Title:           strings.TrimSpace(f.Title),
		Description:     optional(f.Description),
		Category:        strings.ToLower(strings.TrimSpace(f.Category)),
		Difficulty:      strings.ToLower(strings.TrimSpace(f.Difficulty)),
		DurationSeconds: seconds,
		VideoURL:        optional(f.VideoURL),
		ThumbnailURL:    optional(f.ThumbnailURL),
		InstructorID:    optionalID(f.InstructorID),
		IsPublished:     f.Publish,
	}
	if err := validateForm(req, durErr); err != nil {
		return nil, err
	}
	return req, nil
}

// VideoPatch holds only the edited video fields
type VideoPatch struct {
	Title        *string
	Description  *string
	Category     *string
	Difficulty   *string
	Duration     *string
	VideoURL     *string
	ThumbnailURL *string
	InstructorID *int64
	Publish      *bool
}

func (p VideoPatch) Request() (*dto.UpdateVideoRequest, error) {
	req := &dto.UpdateVideoRequest{
		Title:        p.Title,
		Description:  p.Description,
		Category:     p.Category,
		Difficulty:   p.Difficulty,
		VideoURL:     p.VideoURL,
		ThumbnailURL: p.ThumbnailURL,
		InstructorID: p.InstructorID,
		IsPublished:  p.Publish,
	}
	var rules []error
	if p.Duration != nil {
		seconds, err := parseDuration(*p.Duration)
		rules = append(rules, err)
		req.DurationSeconds = &seconds
	}
	if err := validateForm(req, rules...); err != nil {
		return nil, err
	}
	return req, nil
}

// EnrollmentForm enrolls a member in a class
type EnrollmentForm struct {
	ClassID int64
	UserID  int64
	Note    string
}

func (f EnrollmentForm) Request() (*dto.CreateEnrollmentRequest, error) {
	req := &dto.CreateEnrollmentRequest{
		ClassID: f.ClassID,
		UserID:  optionalID(f.UserID),
		Note:    optional(f.Note),
	}
	if err := validateForm(req); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseFilterTime parses an optional list filter bound such as --from
func ParseFilterTime(field, raw string) (*time.Time, error) {
	t, err := parseTime(field, raw)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

package dashboard

import (
	"context"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/query"
)

// EnrollmentsPage reviews class enrollments
type EnrollmentsPage struct{ app *App }

func (p *EnrollmentsPage) List(ctx context.Context, in Listing[models.EnrollmentFilter]) error {
	a := p.app
	if err := a.requireSession(); err != nil {
		return err
	}

	a.render.Loading("enrollments")
	page, err := p.fetchPage(ctx, in)
	if err != nil {
		return a.fail(err)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, e := range page.Items {
		rows = append(rows, []string{
			idString(e.ID),
			orID(e.ClassName, e.ClassID),
			formatTimePtr(e.ClassStart),
			orID(e.MemberName, e.UserID),
			string(e.Status),
			formatTime(e.CreatedAt),
		})
	}
	a.render.Table([]string{"ID", "CLASS", "CLASS START", "MEMBER", "STATUS", "CREATED"}, rows, "No enrollments found.")
	a.render.Pagination(page.Pagination)
	return nil
}

func (p *EnrollmentsPage) fetchPage(ctx context.Context, in Listing[models.EnrollmentFilter]) (*dto.Page[models.Enrollment], error) {
	return query.Fetch(ctx, p.app.query, query.NewKey(in, resEnrollments),
		func(ctx context.Context) (*dto.Page[models.Enrollment], error) {
			return p.app.api.Enrollments.List(ctx, in.Filter, in.Params)
		})
}

func orID(name string, id int64) string {
	if name != "" {
		return name
	}
	return "#" + idString(id)
}

func (p *EnrollmentsPage) Show(ctx context.Context, id int64) error {
	a := p.app
	if err := a.requireSession(); err != nil {
		return err
	}

	a.render.Loading("enrollment")
	e, err := query.Fetch(ctx, a.query, query.NewKey(nil, resEnrollments, idKey(id)),
		func(ctx context.Context) (*models.Enrollment, error) {
			return a.api.Enrollments.Get(ctx, id)
		})
	if err != nil {
		return a.fail(err)
	}
	p.detail(e)
	return nil
}

func (p *EnrollmentsPage) detail(e *models.Enrollment) {
	p.app.render.Detail([][2]string{
		{"ID", idString(e.ID)},
		{"Class", orID(e.ClassName, e.ClassID)},
		{"Class start", formatTimePtr(e.ClassStart)},
		{"Member", orID(e.MemberName, e.UserID)},
		{"Status", string(e.Status)},
		{"Note", deref(e.Note)},
		{"Created", formatTime(e.CreatedAt)},
		{"Updated", formatTime(e.UpdatedAt)},
	})
}

// Create enrolls a member. Without a user id the signed-in account enrolls.
func (p *EnrollmentsPage) Create(ctx context.Context, form EnrollmentForm) error {
	a := p.app
	if err := a.requireSession(); err != nil {
		return err
	}
	req, err := form.Request()
	if err != nil {
		return a.fail(err)
	}

	e, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Enrollment, error) {
		return a.api.Enrollments.Create(ctx, req)
	}, resEnrollments, resClasses)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Enrollment %d created (%s).", e.ID, e.Status)
	return nil
}

// Transition moves an enrollment to status. Rejecting and cancelling ask first.
func (p *EnrollmentsPage) Transition(ctx context.Context, id int64, status models.EnrollmentStatus, note string, assumeYes bool) error {
	a := p.app
	if err := a.requireSession(); err != nil {
		return err
	}
	req := &dto.UpdateEnrollmentRequest{Status: string(status), Note: optional(note)}
	if err := validateForm(req); err != nil {
		return a.fail(err)
	}

	if status == models.EnrollmentRejected || status == models.EnrollmentCancelled {
		ok, err := a.confirm(assumeYes, "Mark enrollment %d as %s?", id, status)
		if err != nil || !ok {
			return err
		}
	}

	e, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Enrollment, error) {
		return a.api.Enrollments.UpdateStatus(ctx, id, req)
	}, resEnrollments, resClasses)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Enrollment %d is now %s.", e.ID, e.Status)
	return nil
}

func (p *EnrollmentsPage) Delete(ctx context.Context, id int64, assumeYes bool) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	ok, err := a.confirm(assumeYes, "Delete enrollment %d? This cannot be undone.", id)
	if err != nil || !ok {
		return err
	}

	_, err = query.Mutate(ctx, a.query, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.api.Enrollments.Delete(ctx, id)
	}, resEnrollments, resClasses)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Enrollment %d deleted.", id)
	return nil
}

package dashboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/query"
)

// Listing is the filter and paging of a list page
type Listing[F any] struct {
	Filter F                 `json:"filter"`
	Params models.ListParams `json:"params"`
}

// ClassesPage manages the class schedule
type ClassesPage struct{ app *App }

func (p *ClassesPage) List(ctx context.Context, in Listing[models.ClassFilter]) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}

	a.render.Loading("classes")
	page, err := query.Fetch(ctx, a.query, query.NewKey(in, resClasses),
		func(ctx context.Context) (*dto.Page[models.Class], error) {
			return a.api.Classes.List(ctx, in.Filter, in.Params)
		})
	if err != nil {
		return a.fail(err)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, c := range page.Items {
		rows = append(rows, []string{
			idString(c.ID),
			c.Name,
			instructorLabel(c),
			formatTime(c.StartTime),
			formatTime(c.EndTime),
			fmt.Sprintf("%d/%d", c.EnrolledCount, c.Capacity),
			string(c.Status),
		})
	}
	a.render.Table([]string{"ID", "NAME", "INSTRUCTOR", "START", "END", "ENROLLED", "STATUS"}, rows, "No classes found.")
	a.render.Pagination(page.Pagination)
	return nil
}

func instructorLabel(c models.Class) string {
	if c.InstructorName != "" {
		return c.InstructorName
	}
	return idPtrString(c.InstructorID)
}

func (p *ClassesPage) Show(ctx context.Context, id int64) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}

	a.render.Loading("class")
	c, err := query.Fetch(ctx, a.query, query.NewKey(nil, resClasses, idKey(id)),
		func(ctx context.Context) (*models.Class, error) {
			return a.api.Classes.Get(ctx, id)
		})
	if err != nil {
		return a.fail(err)
	}
	p.detail(c)
	return nil
}

func (p *ClassesPage) detail(c *models.Class) {
	p.app.render.Detail([][2]string{
		{"ID", idString(c.ID)},
		{"Name", c.Name},
		{"Description", deref(c.Description)},
		{"Instructor", instructorLabel(*c)},
		{"Location", deref(c.Location)},
		{"Start", formatTime(c.StartTime)},
		{"End", formatTime(c.EndTime)},
		{"Capacity", strconv.Itoa(c.Capacity)},
		{"Enrolled", strconv.Itoa(c.EnrolledCount)},
		{"Spots left", strconv.Itoa(c.SpotsLeft())},
		{"Status", string(c.Status)},
	})
}

// Create validates the form and schedules the class. An invalid form never
// reaches the API.
func (p *ClassesPage) Create(ctx context.Context, form ClassForm) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	req, err := form.Request()
	if err != nil {
		return a.fail(err)
	}

	c, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Class, error) {
		return a.api.Classes.Create(ctx, req)
	}, resClasses)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Class %q created with id %d.", c.Name, c.ID)
	return nil
}

func (p *ClassesPage) Update(ctx context.Context, id int64, patch ClassPatch) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	req, err := patch.Request()
	if err != nil {
		return a.fail(err)
	}

	c, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Class, error) {
		return a.api.Classes.Update(ctx, id, req)
	}, resClasses, resEnrollments)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Class %d updated.", c.ID)
	p.detail(c)
	return nil
}

// Cancel marks a class cancelled without deleting it
func (p *ClassesPage) Cancel(ctx context.Context, id int64, assumeYes bool) error {
	if err := p.app.requireAdmin(); err != nil {
		return err
	}
	ok, err := p.app.confirm(assumeYes, "Cancel class %d?", id)
	if err != nil || !ok {
		return err
	}
	status := string(models.ClassStatusCancelled)
	return p.Update(ctx, id, ClassPatch{Status: &status})
}

func (p *ClassesPage) Delete(ctx context.Context, id int64, assumeYes bool) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	ok, err := a.confirm(assumeYes, "Delete class %d? This cannot be undone.", id)
	if err != nil || !ok {
		return err
	}

	_, err = query.Mutate(ctx, a.query, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.api.Classes.Delete(ctx, id)
	}, resClasses, resEnrollments)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Class %d deleted.", id)
	return nil
}

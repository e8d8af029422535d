package dashboard

import (
	"context"
	"strings"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/query"
)

// StaffPage manages trainers and their skills
type StaffPage struct{ app *App }

func (p *StaffPage) List(ctx context.Context, in Listing[models.StaffFilter]) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}

	a.render.Loading("staff")
	page, err := query.Fetch(ctx, a.query, query.NewKey(in, resStaff),
		func(ctx context.Context) (*dto.Page[models.Staff], error) {
			return a.api.Staff.List(ctx, in.Filter, in.Params)
		})
	if err != nil {
		return a.fail(err)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, s := range page.Items {
		rows = append(rows, []string{
			idString(s.ID),
			s.FullName(),
			s.Email,
			yesNo(s.IsActive),
			skillSummary(s.Skills),
		})
	}
	a.render.Table([]string{"ID", "NAME", "EMAIL", "ACTIVE", "SKILLS"}, rows, "No staff members found.")
	a.render.Pagination(page.Pagination)
	return nil
}

// skillSummary lists skill names, marking ones still awaiting review
func skillSummary(skills []models.Skill) string {
	if len(skills) == 0 {
		return "-"
	}
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		switch s.Status {
		case models.SkillPending:
			names = append(names, s.Name+" (pending)")
		case models.SkillRejected:
			continue
		default:
			names = append(names, s.Name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func (p *StaffPage) Show(ctx context.Context, id int64) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}

	a.render.Loading("staff member")
	s, err := query.Fetch(ctx, a.query, query.NewKey(nil, resStaff, idKey(id)),
		func(ctx context.Context) (*models.Staff, error) {
			return a.api.Staff.Get(ctx, id)
		})
	if err != nil {
		return a.fail(err)
	}
	p.detail(s)
	return nil
}

func (p *StaffPage) detail(s *models.Staff) {
	r := p.app.render
	r.Detail([][2]string{
		{"ID", idString(s.ID)},
		{"Name", s.FullName()},
		{"Email", s.Email},
		{"Phone", deref(s.Phone)},
		{"Bio", deref(s.Bio)},
		{"Active", yesNo(s.IsActive)},
	})

	r.Heading("Skills")
	rows := make([][]string, 0, len(s.Skills))
	for _, sk := range s.Skills {
		rows = append(rows, []string{idString(sk.ID), sk.Name, string(sk.Status), formatTimePtr(sk.ReviewedAt)})
	}
	r.Table([]string{"ID", "SKILL", "STATUS", "REVIEWED"}, rows, "No skills recorded.")
}

func (p *StaffPage) Create(ctx context.Context, form StaffForm) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	req, err := form.Request()
	if err != nil {
		return a.fail(err)
	}

	s, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Staff, error) {
		return a.api.Staff.Create(ctx, req)
	}, resStaff)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Staff member %s created with id %d.", s.FullName(), s.ID)
	return nil
}

func (p *StaffPage) Update(ctx context.Context, id int64, patch StaffPatch) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	req, err := patch.Request()
	if err != nil {
		return a.fail(err)
	}

	// Class rows show instructor names
	s, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Staff, error) {
		return a.api.Staff.Update(ctx, id, req)
	}, resStaff, resClasses)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Staff member %d updated.", s.ID)
	p.detail(s)
	return nil
}

// SetActive activates or deactivates a trainer
func (p *StaffPage) SetActive(ctx context.Context, id int64, active bool) error {
	return p.Update(ctx, id, StaffPatch{IsActive: &active})
}

func (p *StaffPage) Delete(ctx context.Context, id int64, assumeYes bool) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	ok, err := a.confirm(assumeYes, "Delete staff member %d? This cannot be undone.", id)
	if err != nil || !ok {
		return err
	}

	_, err = query.Mutate(ctx, a.query, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.api.Staff.Delete(ctx, id)
	}, resStaff, resClasses, resVideos)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Staff member %d deleted.", id)
	return nil
}

// AddSkill submits a skill for review
func (p *StaffPage) AddSkill(ctx context.Context, staffID int64, name string) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	req := dto.AddSkillRequest{Name: strings.TrimSpace(name)}
	if err := validateForm(&req); err != nil {
		return a.fail(err)
	}

	sk, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Skill, error) {
		return a.api.Staff.AddSkill(ctx, staffID, req.Name)
	}, resStaff)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Skill %q added to staff member %d (%s).", sk.Name, staffID, sk.Status)
	return nil
}

// ReviewSkill approves or rejects a pending skill
func (p *StaffPage) ReviewSkill(ctx context.Context, staffID, skillID int64, status models.SkillStatus) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	req := dto.ReviewSkillRequest{Status: string(status)}
	if err := validateForm(&req); err != nil {
		return a.fail(err)
	}

	sk, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Skill, error) {
		return a.api.Staff.ReviewSkill(ctx, staffID, skillID, status)
	}, resStaff)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Skill %q is now %s.", sk.Name, sk.Status)
	return nil
}

func (p *StaffPage) DeleteSkill(ctx context.Context, staffID, skillID int64, assumeYes bool) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	ok, err := a.confirm(assumeYes, "Remove skill %d from staff member %d?", skillID, staffID)
	if err != nil || !ok {
		return err
	}

	_, err = query.Mutate(ctx, a.query, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.api.Staff.DeleteSkill(ctx, staffID, skillID)
	}, resStaff)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Skill %d removed.", skillID)
	return nil
}

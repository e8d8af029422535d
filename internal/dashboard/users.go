package dashboard

import (
	"context"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/query"
)

// UsersPage manages accounts
type UsersPage struct{ app *App }

func (p *UsersPage) List(ctx context.Context, in Listing[models.UserFilter]) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}

	a.render.Loading("users")
	page, err := query.Fetch(ctx, a.query, query.NewKey(in, resUsers),
		func(ctx context.Context) (*dto.Page[models.User], error) {
			return a.api.Users.List(ctx, in.Filter, in.Params)
		})
	if err != nil {
		return a.fail(err)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, u := range page.Items {
		rows = append(rows, []string{
			idString(u.ID),
			u.FullName(),
			u.Email,
			string(u.RoleType),
			yesNo(u.IsActive),
			formatTimePtr(u.LastLoginAt),
		})
	}
	a.render.Table([]string{"ID", "NAME", "EMAIL", "ROLE", "ACTIVE", "LAST LOGIN"}, rows, "No users found.")
	a.render.Pagination(page.Pagination)
	return nil
}

func (p *UsersPage) Show(ctx context.Context, id int64) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}

	a.render.Loading("user")
	u, err := query.Fetch(ctx, a.query, query.NewKey(nil, resUsers, idKey(id)),
		func(ctx context.Context) (*models.User, error) {
			return a.api.Users.Get(ctx, id)
		})
	if err != nil {
		return a.fail(err)
	}
	p.detail(u)
	return nil
}

func (p *UsersPage) detail(u *models.User) {
	p.app.render.Detail([][2]string{
		{"ID", idString(u.ID)},
		{"Name", u.FullName()},
		{"Email", u.Email},
		{"Phone", deref(u.Phone)},
		{"Role", string(u.RoleType)},
		{"Active", yesNo(u.IsActive)},
		{"Last login", formatTimePtr(u.LastLoginAt)},
		{"Created", formatTime(u.CreatedAt)},
	})
}

func (p *UsersPage) Create(ctx context.Context, form UserForm) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	req, err := form.Request()
	if err != nil {
		return a.fail(err)
	}

	u, err := p.create(ctx, req)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("User %s created with id %d.", u.Email, u.ID)
	return nil
}

func (p *UsersPage) create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	return query.Mutate(ctx, p.app.query, func(ctx context.Context) (*models.User, error) {
		return p.app.api.Users.Create(ctx, req)
	}, resUsers)
}

func (p *UsersPage) Update(ctx context.Context, id int64, patch UserPatch) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	req, err := patch.Request()
	if err != nil {
		return a.fail(err)
	}

	// Enrollment rows show member names
	u, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.User, error) {
		return a.api.Users.Update(ctx, id, req)
	}, resUsers, resEnrollments)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("User %d updated.", u.ID)
	p.detail(u)
	return nil
}

// SetActive activates or deactivates an account. Deactivating asks first
// because it also signs the user out everywhere.
func (p *UsersPage) SetActive(ctx context.Context, id int64, active, assumeYes bool) error {
	if err := p.app.requireAdmin(); err != nil {
		return err
	}
	if !active {
		ok, err := p.app.confirm(assumeYes, "Deactivate user %d? Their sessions end immediately.", id)
		if err != nil || !ok {
			return err
		}
	}
	return p.Update(ctx, id, UserPatch{IsActive: &active})
}

func (p *UsersPage) Delete(ctx context.Context, id int64, assumeYes bool) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	ok, err := a.confirm(assumeYes, "Delete user %d? This cannot be undone.", id)
	if err != nil || !ok {
		return err
	}

	_, err = query.Mutate(ctx, a.query, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.api.Users.Delete(ctx, id)
	}, resUsers, resEnrollments)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("User %d deleted.", id)
	return nil
}

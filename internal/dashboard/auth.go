package dashboard

import (
	"context"
	"errors"
	"strings"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/pkg/validation"
)

// AuthPage signs the operator in and out
type AuthPage struct{ app *App }

// Login asks for any missing credential, signs in and stores the session
func (p *AuthPage) Login(ctx context.Context, email, password string) error {
	a := p.app

	var err error
	if strings.TrimSpace(email) == "" {
		if email, err = a.prompt.Ask("Email:"); err != nil {
			return a.fail(err)
		}
	}
	if password == "" {
		if password, err = a.prompt.Ask("Password:"); err != nil {
			return a.fail(err)
		}
	}

	req := dto.LoginRequest{Email: strings.ToLower(strings.TrimSpace(email)), Password: password}
	if err := validation.Struct(&req); err != nil {
		return a.fail(err)
	}

	auth, err := a.api.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return a.fail(err)
	}
	sess, err := a.sessions.Start(a.cfg.APIURL, auth)
	if err != nil {
		return a.fail(err)
	}
	// Entries left under this account may predate the login
	if err := a.query.Clear(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to clear cache after login")
	}

	a.render.Success("Signed in as %s (%s).", sess.Email, sess.Role)
	if sess.Role != models.RoleAdmin {
		a.render.Success("Admin pages are unavailable to %s accounts.", sess.Role)
	}
	return nil
}

// Logout revokes the refresh token and forgets the session and cache. Local
// state is cleared even when the API cannot be reached.
func (p *AuthPage) Logout(ctx context.Context) error {
	a := p.app
	sess, err := a.sessions.Load()
	if err != nil {
		return a.fail(err)
	}
	if sess == nil {
		a.render.Success("Not signed in.")
		return nil
	}

	if sess.RefreshToken != "" {
		if err := a.api.Auth.Logout(ctx, sess.RefreshToken); err != nil {
			a.logger.Warn().Err(err).Msg("Refresh token revocation failed")
		}
	}

	// The cache namespace comes from the session, so it goes first
	cacheErr := a.query.Clear(ctx)
	if err := errors.Join(cacheErr, a.sessions.Clear()); err != nil {
		return a.fail(err)
	}
	a.render.Success("Signed out.")
	return nil
}

// WhoAmI shows the account behind the session, as the API sees it
func (p *AuthPage) WhoAmI(ctx context.Context) error {
	a := p.app
	if err := a.requireSession(); err != nil {
		return err
	}

	a.render.Loading("profile")
	u, err := a.api.Auth.Me(ctx)
	if err != nil {
		return a.fail(err)
	}
	a.render.Detail([][2]string{
		{"ID", idString(u.ID)},
		{"Name", u.FullName()},
		{"Email", u.Email},
		{"Role", string(u.RoleType)},
		{"API", a.cfg.APIURL},
		{"Session file", a.sessions.Path()},
	})
	return nil
}

package dashboard

import (
	"errors"
	"time"

	"github.com/fitdesk/gymadmin/internal/app/models"
)

// Guard errors
var (
	ErrNotSignedIn   = errors.New("not signed in, run `gymadmin login` first")
	ErrAdminRequired = errors.New("this page requires an ADMIN account")
)

// Guard gates pages behind a valid session
type Guard struct {
	sessions *SessionStore
	apiURL   string
	now      func() time.Time
}

// NewGuard checks sessions issued by the API at apiURL
func NewGuard(sessions *SessionStore, apiURL string) *Guard {
	return &Guard{sessions: sessions, apiURL: apiURL, now: time.Now}
}

// Require returns the session when one exists, is still usable, and has one
// of roles (any role when none are given). It never touches the network.
func (g *Guard) Require(roles ...models.RoleType) (*Session, error) {
	sess, err := g.sessions.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.AccessToken == "" {
		return nil, ErrNotSignedIn
	}
	if sess.APIURL != "" && g.apiURL != "" && sess.APIURL != g.apiURL {
		return nil, ErrNotSignedIn
	}

	now := g.now()
	if sess.Expired(now) && !sess.CanRefresh(now) {
		return nil, ErrNotSignedIn
	}

	if len(roles) == 0 {
		return sess, nil
	}
	for _, r := range roles {
		if sess.Role == r {
			return sess, nil
		}
	}
	return nil, ErrAdminRequired
}

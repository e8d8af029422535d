package dashboard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mitchellh/go-homedir"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
)

const sessionFileMode = 0o600

// Session is the signed-in state kept between invocations
type Session struct {
	APIURL           string          `json:"apiUrl"`
	AccessToken      string          `json:"accessToken"`
	RefreshToken     string          `json:"refreshToken"`
	ExpiresAt        time.Time       `json:"expiresAt"`
	RefreshExpiresAt time.Time       `json:"refreshExpiresAt,omitempty"`
	UserID           int64           `json:"userId"`
	Email            string          `json:"email"`
	Name             string          `json:"name"`
	Role             models.RoleType `json:"role"`
}

// Expired reports whether the access token is past its lifetime
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CanRefresh reports whether the refresh token may still be exchanged
func (s *Session) CanRefresh(now time.Time) bool {
	if s.RefreshToken == "" {
		return false
	}
	return s.RefreshExpiresAt.IsZero() || now.Before(s.RefreshExpiresAt)
}

func (s *Session) apply(auth *dto.AuthResponse, now time.Time) {
	s.AccessToken = auth.Token.AccessToken
	s.ExpiresAt = now.Add(time.Duration(auth.Token.ExpiresIn) * time.Second)
	if auth.Token.RefreshToken != "" {
		s.RefreshToken = auth.Token.RefreshToken
		if auth.Token.RefreshTokenExpiresIn > 0 {
			s.RefreshExpiresAt = now.Add(time.Duration(auth.Token.RefreshTokenExpiresIn) * time.Second)
		}
	}
	if u := auth.User; u != nil {
		s.UserID = u.ID
		s.Email = u.Email
		s.Name = u.FullName()
		s.Role = u.RoleType
	}
}

// DefaultSessionPath returns ~/.gymadmin/session.json
func DefaultSessionPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".gymadmin", "session.json"), nil
}

// SessionStore reads and writes the session file. It also serves as the API
// client's token source, so refreshed tokens are written back to disk.
type SessionStore struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	current *Session
	loaded  bool
}

// NewSessionStore manages the session file at path (a leading ~ is expanded)
func NewSessionStore(path string) (*SessionStore, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("invalid session path %q: %w", path, err)
	}
	return &SessionStore{path: expanded, now: time.Now}, nil
}

// Path returns the session file location
func (s *SessionStore) Path() string {
	return s.path
}

// Load returns the stored session, or nil when nobody is signed in
func (s *SessionStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *SessionStore) loadLocked() (*Session, error) {
	if s.loaded {
		return s.current, nil
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = true
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("session file %s is corrupt, sign in again: %w", s.path, err)
	}
	s.current, s.loaded = &sess, true
	return s.current, nil
}

// Save writes sess readable by the owner only
func (s *SessionStore) Save(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(sess)
}

func (s *SessionStore) saveLocked(sess *Session) error {
	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, sessionFileMode); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(tmp, sessionFileMode); err != nil {
		return fmt.Errorf("failed to restrict session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}

	s.current, s.loaded = sess, true
	return nil
}

// Clear removes the session file
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	s.current, s.loaded = nil, true
	return nil
}

// Start stores a fresh session from a login response
func (s *SessionStore) Start(apiURL string, auth *dto.AuthResponse) (*Session, error) {
	sess := &Session{APIURL: apiURL}
	sess.apply(auth, s.now())
	if err := s.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.loadLocked()
	if err != nil || sess == nil {
		return ""
	}
	return sess.AccessToken
}

func (s *SessionStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.loadLocked()
	if err != nil || sess == nil || !sess.CanRefresh(s.now()) {
		return ""
	}
	return sess.RefreshToken
}

// SetTokens records a refreshed token pair
func (s *SessionStore) SetTokens(auth *dto.AuthResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadLocked()
	if err != nil {
		return err
	}
	if sess == nil {
		sess = &Session{}
	}
	updated := *sess
	updated.apply(auth, s.now())
	return s.saveLocked(&updated)
}

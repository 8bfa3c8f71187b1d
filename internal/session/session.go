// Package session wraps a cookie-backed session store holding the single
// principal identifier of a logged-in user or administrator.
package session

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionName  = "bank_session"
	principalKey = "principal_id"
)

// Manager owns the cookie store and the login-redirect policy.
type Manager struct {
	store *sessions.CookieStore

	// LoginURL is where unauthenticated page requests are redirected.
	LoginURL string
	// LoginMessage is flashed when a protected page demands a login.
	LoginMessage string
}

// NewManager derives separate signing and encryption keys from the secret
// and configures the cookie with the given lifetime and flags.
func NewManager(secret string, lifetime time.Duration, httpOnly, secure bool, sameSite http.SameSite) *Manager {
	authKey := sha256.Sum256([]byte("auth:" + secret))
	encKey := sha256.Sum256([]byte("enc:" + secret))

	store := sessions.NewCookieStore(authKey[:], encKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: httpOnly,
		SameSite: sameSite,
		Secure:   secure,
	}

	return &Manager{
		store:        store,
		LoginURL:     "/auth/choose",
		LoginMessage: "Please log in to access this page.",
	}
}

func (m *Manager) session(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, sessionName)
}

// SetPrincipal stores the principal identifier and issues the cookie.
func (m *Manager) SetPrincipal(w http.ResponseWriter, r *http.Request, id string) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	s.Values[principalKey] = id
	return s.Save(r, w)
}

// PrincipalID returns the stored identifier, if any. A cookie that fails
// authentication is treated as no session.
func (m *Manager) PrincipalID(r *http.Request) (string, bool) {
	s, err := m.session(r)
	if err != nil {
		return "", false
	}
	id, ok := s.Values[principalKey].(string)
	return id, ok && id != ""
}

// Clear drops the principal identifier and rewrites the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	delete(s.Values, principalKey)
	return s.Save(r, w)
}

// AddFlash queues a one-time message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, message string) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	s.AddFlash(message)
	return s.Save(r, w)
}

// Flashes drains and returns the queued messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	s, err := m.session(r)
	if err != nil {
		return nil
	}
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save(r, w)

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

// RedirectToLogin flashes the login message and sends the browser to the
// login chooser.
func (m *Manager) RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	_ = m.AddFlash(w, r, m.LoginMessage)
	http.Redirect(w, r, m.LoginURL, http.StatusFound)
}

package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/roomboard-io/roomboard-engine/pkg/config"
)

// SessionStore wraps cookie-backed sessions for the login flow and
// the persistent login itself.
type SessionStore struct {
	store      *sessions.CookieStore
	cookieName string
}

// Session value keys.
const (
	sessionKeyUserID = "user_id"
	sessionKeyState  = "oauth_state"
)

// NewSessionStore creates a cookie session store. The secret can be
// any passphrase; it is SHA-256 hashed to derive a signing key and
// must be consistent across restarts.
func NewSessionStore(cfg config.SessionConfig) *SessionStore {
	key := sha256.Sum256([]byte(cfg.Secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   cfg.MaxAgeHours * 3600,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store, cookieName: cfg.CookieName}
}

// UserID returns the logged-in user's internal id, or zero when the
// request carries no valid login session.
func (s *SessionStore) UserID(r *http.Request) int64 {
	session, err := s.store.Get(r, s.cookieName)
	if err != nil {
		return 0
	}
	id, _ := session.Values[sessionKeyUserID].(int64)
	return id
}

// Login writes the user id into a fresh session cookie.
func (s *SessionStore) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	session, _ := s.store.Get(r, s.cookieName)
	session.Values[sessionKeyUserID] = userID
	delete(session.Values, sessionKeyState)
	return session.Save(r, w)
}

// Logout expires the session cookie.
func (s *SessionStore) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, s.cookieName)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// SetState stashes the OAuth state parameter for the redirect leg.
func (s *SessionStore) SetState(w http.ResponseWriter, r *http.Request, state string) error {
	session, _ := s.store.Get(r, s.cookieName)
	session.Values[sessionKeyState] = state
	return session.Save(r, w)
}

// ConsumeState returns and clears the stashed OAuth state.
func (s *SessionStore) ConsumeState(w http.ResponseWriter, r *http.Request) string {
	session, err := s.store.Get(r, s.cookieName)
	if err != nil {
		return ""
	}
	state, _ := session.Values[sessionKeyState].(string)
	delete(session.Values, sessionKeyState)
	_ = session.Save(r, w)
	return state
}

// Package auth handles login: the OAuth code flow, the persistent
// session cookie, and the middleware that turns a session into the
// per-request principal.
package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/authz"
)

// Middleware resolves the session cookie into a request scope for
// downstream authorization.
type Middleware struct {
	sessions *SessionStore
	logger   *zap.Logger
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(sessions *SessionStore, logger *zap.Logger) *Middleware {
	return &Middleware{sessions: sessions, logger: logger}
}

// WithScope attaches a fresh authz.RequestScope for the logged-in
// user. Anonymous requests pass through without a scope; the gate
// denies them downstream.
func (m *Middleware) WithScope(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := m.sessions.UserID(r)
		if userID == 0 {
			next(w, r)
			return
		}
		ctx := authz.WithScope(r.Context(), authz.NewRequestScope(userID))
		next(w, r.WithContext(ctx))
	}
}

// RequireLogin rejects anonymous requests with 401 before any
// resource lookup happens.
func (m *Middleware) RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := m.sessions.UserID(r)
		if userID == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
			return
		}
		ctx := authz.WithScope(r.Context(), authz.NewRequestScope(userID))
		next(w, r.WithContext(ctx))
	}
}

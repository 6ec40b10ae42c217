package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/auth"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
	"github.com/roomboard-io/roomboard-engine/pkg/repositories"
)

const maxDisplayNameLength = 100

// AuthHandler handles the OAuth login flow and the current-user
// endpoints.
type AuthHandler struct {
	oauth    *auth.OAuthClient
	sessions *auth.SessionStore
	users    repositories.UserRepository
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler. oauth may be nil when
// login is not configured; the login routes then return 503.
func NewAuthHandler(oauth *auth.OAuthClient, sessions *auth.SessionStore, users repositories.UserRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		oauth:    oauth,
		sessions: sessions,
		users:    users,
		logger:   logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("GET /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/auth/callback", h.Callback)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/me", mw.RequireLogin(h.Me))
	mux.HandleFunc("PATCH /api/me", mw.RequireLogin(h.UpdateProfile))
}

// Login handles GET /api/auth/login. Stores a CSRF state value in the
// session and redirects to the identity provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		if err := ErrorResponse(w, http.StatusServiceUnavailable, "login_unavailable", "Login is not configured"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("Failed to generate login state", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to start login"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.sessions.SetState(w, r, state); err != nil {
		h.logger.Error("Failed to persist login state", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to start login"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /api/auth/callback. Verifies the state value,
// exchanges the code for an identity, upserts the account, and starts
// the session.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		if err := ErrorResponse(w, http.StatusServiceUnavailable, "login_unavailable", "Login is not configured"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" || state != h.sessions.ConsumeState(w, r) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_state", "Login state mismatch, restart login"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_code", "Missing authorization code"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	identity, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("OAuth code exchange failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusBadGateway, "exchange_failed", "Identity provider rejected the login"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, err := h.users.UpsertByIdentity(r.Context(), &models.User{
		Provider: identity.Provider,
		Subject:  identity.Subject,
		Email:    identity.Email,
		Name:     identity.DisplayName,
	})
	if err != nil {
		h.logger.Error("Failed to upsert user on login", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to complete login"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.sessions.Login(w, r, user.ID); err != nil {
		h.logger.Error("Failed to start session", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to complete login"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.logger.Error("Failed to clear session", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me. Returns the logged-in user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), scope.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpdateProfileRequest is the request body for profile updates.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

// UpdateProfile handles PATCH /api/me. Updates the display name shown
// to other room members.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" || len(displayName) > maxDisplayNameLength {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_failed", "display_name must be 1-100 characters"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.users.UpdateDisplayName(r.Context(), scope.UserID, displayName); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	user, err := h.users.Get(r.Context(), scope.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

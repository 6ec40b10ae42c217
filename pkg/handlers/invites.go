package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/auth"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/services"
)

// InvitesHandler handles invite code HTTP requests.
type InvitesHandler struct {
	invites services.InviteService
	logger  *zap.Logger
}

// NewInvitesHandler creates a new invites handler.
func NewInvitesHandler(invites services.InviteService, logger *zap.Logger) *InvitesHandler {
	return &InvitesHandler{invites: invites, logger: logger}
}

// RegisterRoutes registers the invites handler's routes on the given mux.
func (h *InvitesHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("POST /api/rooms/{rid}/invites", mw.RequireLogin(h.Create))
	mux.HandleFunc("GET /api/rooms/{rid}/invites", mw.RequireLogin(h.List))
	mux.HandleFunc("DELETE /api/rooms/{rid}/invites/{iid}", mw.RequireLogin(h.Revoke))
	mux.HandleFunc("POST /api/invites/redeem", mw.RequireLogin(h.Redeem))
}

// CreateInviteRequest is the request body for creating an invite.
type CreateInviteRequest struct {
	Role          string     `json:"role"`
	RedemptionMax int        `json:"redemption_max"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Create handles POST /api/rooms/{rid}/invites.
func (h *InvitesHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	invite, err := h.invites.Create(r.Context(), scope, roomID, authz.Role(req.Role), req.RedemptionMax, req.ExpiresAt)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, invite); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/rooms/{rid}/invites.
func (h *InvitesHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	invites, err := h.invites.List(r.Context(), scope, roomID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, invites); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Revoke handles DELETE /api/rooms/{rid}/invites/{iid}. Revoked codes
// read as unknown to later redeemers.
func (h *InvitesHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	inviteID, err := uuid.Parse(r.PathValue("iid"))
	if err != nil {
		writeInvalidID(w, h.logger, "invite")
		return
	}

	if err := h.invites.Revoke(r.Context(), scope, roomID, inviteID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RedeemInviteRequest is the request body for redeeming an invite code.
type RedeemInviteRequest struct {
	Code string `json:"code"`
}

// Redeem handles POST /api/invites/redeem. Joins the caller to the
// invite's room and returns it.
func (h *InvitesHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	var req RedeemInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	room, err := h.invites.Redeem(r.Context(), scope, req.Code)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, room); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

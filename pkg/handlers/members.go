package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/auth"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/services"
)

// MembersHandler handles room membership HTTP requests.
type MembersHandler struct {
	members services.MemberService
	logger  *zap.Logger
}

// NewMembersHandler creates a new members handler.
func NewMembersHandler(members services.MemberService, logger *zap.Logger) *MembersHandler {
	return &MembersHandler{members: members, logger: logger}
}

// RegisterRoutes registers the members handler's routes on the given mux.
func (h *MembersHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("GET /api/rooms/{rid}/members", mw.RequireLogin(h.List))
	mux.HandleFunc("PATCH /api/rooms/{rid}/members/{uid}", mw.RequireLogin(h.ChangeRole))
	mux.HandleFunc("DELETE /api/rooms/{rid}/members/{uid}", mw.RequireLogin(h.Kick))
	mux.HandleFunc("POST /api/rooms/{rid}/leave", mw.RequireLogin(h.Leave))
}

// List handles GET /api/rooms/{rid}/members.
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	members, err := h.members.List(r.Context(), scope, roomID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, members); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ChangeRoleRequest is the request body for role changes.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeRole handles PATCH /api/rooms/{rid}/members/{uid}. The owner
// role cannot be granted or taken away.
func (h *MembersHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	userID, err := uuid.Parse(r.PathValue("uid"))
	if err != nil {
		writeInvalidID(w, h.logger, "user")
		return
	}

	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	membership, err := h.members.ChangeRole(r.Context(), scope, roomID, userID, authz.Role(req.Role))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, membership); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Kick handles DELETE /api/rooms/{rid}/members/{uid}.
func (h *MembersHandler) Kick(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	userID, err := uuid.Parse(r.PathValue("uid"))
	if err != nil {
		writeInvalidID(w, h.logger, "user")
		return
	}

	if err := h.members.Kick(r.Context(), scope, roomID, userID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Leave handles POST /api/rooms/{rid}/leave. Owners cannot leave their
// own room.
func (h *MembersHandler) Leave(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	if err := h.members.Leave(r.Context(), scope, roomID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/auth"
	"github.com/roomboard-io/roomboard-engine/pkg/services"
)

// RoomsHandler handles room lifecycle HTTP requests.
type RoomsHandler struct {
	rooms  services.RoomService
	logger *zap.Logger
}

// NewRoomsHandler creates a new rooms handler.
func NewRoomsHandler(rooms services.RoomService, logger *zap.Logger) *RoomsHandler {
	return &RoomsHandler{rooms: rooms, logger: logger}
}

// RegisterRoutes registers the rooms handler's routes on the given mux.
func (h *RoomsHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("POST /api/rooms", mw.RequireLogin(h.Create))
	mux.HandleFunc("GET /api/rooms", mw.RequireLogin(h.List))
	mux.HandleFunc("GET /api/rooms/{rid}", mw.RequireLogin(h.Get))
	mux.HandleFunc("PATCH /api/rooms/{rid}", mw.RequireLogin(h.Rename))
	mux.HandleFunc("DELETE /api/rooms/{rid}", mw.RequireLogin(h.Delete))
	mux.HandleFunc("POST /api/rooms/{rid}/restore", mw.RequireLogin(h.Restore))
	mux.HandleFunc("DELETE /api/rooms/{rid}/hard", mw.RequireLogin(h.HardDelete))
	mux.HandleFunc("POST /api/rooms/{rid}/purge", mw.RequireLogin(h.PurgeArchived))
}

// RoomNameRequest is the request body for creating or renaming a room.
type RoomNameRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/rooms. The creator becomes the room owner.
func (h *RoomsHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	var req RoomNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	room, err := h.rooms.Create(r.Context(), scope, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, room); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/rooms. Returns the caller's active rooms.
func (h *RoomsHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	rooms, err := h.rooms.List(r.Context(), scope)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, rooms); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/rooms/{rid}.
func (h *RoomsHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	room, err := h.rooms.Get(r.Context(), scope, roomID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, room); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Rename handles PATCH /api/rooms/{rid}.
func (h *RoomsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	var req RoomNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	room, err := h.rooms.Rename(r.Context(), scope, roomID, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, room); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/rooms/{rid}. Archives the room; restore
// undoes it.
func (h *RoomsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	if err := h.rooms.SoftDelete(r.Context(), scope, roomID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /api/rooms/{rid}/restore.
func (h *RoomsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	room, err := h.rooms.Restore(r.Context(), scope, roomID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, room); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// HardDelete handles DELETE /api/rooms/{rid}/hard. Owner only.
// Refuses when active boards remain unless force=true.
func (h *RoomsHandler) HardDelete(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	force := r.URL.Query().Get("force") == "true"

	if err := h.rooms.HardDelete(r.Context(), scope, roomID, force); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PurgeArchived handles POST /api/rooms/{rid}/purge. Owner only.
// Permanently removes the room's soft-deleted content.
func (h *RoomsHandler) PurgeArchived(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	purged, err := h.rooms.PurgeArchived(r.Context(), scope, roomID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]int64{"purged": purged}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

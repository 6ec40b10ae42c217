package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/auth"
	"github.com/roomboard-io/roomboard-engine/pkg/services"
)

// BoardsHandler handles board HTTP requests.
type BoardsHandler struct {
	boards services.BoardService
	logger *zap.Logger
}

// NewBoardsHandler creates a new boards handler.
func NewBoardsHandler(boards services.BoardService, logger *zap.Logger) *BoardsHandler {
	return &BoardsHandler{boards: boards, logger: logger}
}

// RegisterRoutes registers the boards handler's routes on the given mux.
func (h *BoardsHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("POST /api/rooms/{rid}/boards", mw.RequireLogin(h.Create))
	mux.HandleFunc("GET /api/rooms/{rid}/boards", mw.RequireLogin(h.List))
	mux.HandleFunc("GET /api/boards/{bid}", mw.RequireLogin(h.View))
	mux.HandleFunc("PATCH /api/boards/{bid}", mw.RequireLogin(h.Rename))
	mux.HandleFunc("DELETE /api/boards/{bid}", mw.RequireLogin(h.Delete))
	mux.HandleFunc("POST /api/boards/{bid}/restore", mw.RequireLogin(h.Restore))
	mux.HandleFunc("GET /api/boards/{bid}/archived", mw.RequireLogin(h.Archived))
}

// BoardNameRequest is the request body for creating or renaming a board.
type BoardNameRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/rooms/{rid}/boards.
func (h *BoardsHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	var req BoardNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	board, err := h.boards.Create(r.Context(), scope, roomID, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, board); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/rooms/{rid}/boards. Returns the room's active
// boards.
func (h *BoardsHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeInvalidID(w, h.logger, "room")
		return
	}

	boards, err := h.boards.List(r.Context(), scope, roomID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, boards); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// View handles GET /api/boards/{bid}. Returns the board with its
// columns and cards in position order.
func (h *BoardsHandler) View(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(r.PathValue("bid"))
	if err != nil {
		writeInvalidID(w, h.logger, "board")
		return
	}

	view, err := h.boards.View(r.Context(), scope, boardID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, view); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Rename handles PATCH /api/boards/{bid}.
func (h *BoardsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(r.PathValue("bid"))
	if err != nil {
		writeInvalidID(w, h.logger, "board")
		return
	}

	var req BoardNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	board, err := h.boards.Rename(r.Context(), scope, boardID, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, board); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/boards/{bid}. Archives the board together
// with its columns and cards.
func (h *BoardsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(r.PathValue("bid"))
	if err != nil {
		writeInvalidID(w, h.logger, "board")
		return
	}

	if err := h.boards.SoftDelete(r.Context(), scope, boardID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /api/boards/{bid}/restore. Restores the board
// row; archived columns and cards stay archived until restored
// individually.
func (h *BoardsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(r.PathValue("bid"))
	if err != nil {
		writeInvalidID(w, h.logger, "board")
		return
	}

	board, err := h.boards.Restore(r.Context(), scope, boardID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, board); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Archived handles GET /api/boards/{bid}/archived. Lists the board's
// soft-deleted columns and cards.
func (h *BoardsHandler) Archived(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(r.PathValue("bid"))
	if err != nil {
		writeInvalidID(w, h.logger, "board")
		return
	}

	items, err := h.boards.Archived(r.Context(), scope, boardID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, items); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

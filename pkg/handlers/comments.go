package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/auth"
	"github.com/roomboard-io/roomboard-engine/pkg/services"
)

// CommentsHandler handles card comment HTTP requests.
type CommentsHandler struct {
	comments services.CommentService
	logger   *zap.Logger
}

// NewCommentsHandler creates a new comments handler.
func NewCommentsHandler(comments services.CommentService, logger *zap.Logger) *CommentsHandler {
	return &CommentsHandler{comments: comments, logger: logger}
}

// RegisterRoutes registers the comments handler's routes on the given mux.
func (h *CommentsHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("POST /api/cards/{cid}/comments", mw.RequireLogin(h.Create))
	mux.HandleFunc("GET /api/cards/{cid}/comments", mw.RequireLogin(h.List))
	mux.HandleFunc("PATCH /api/comments/{id}", mw.RequireLogin(h.Update))
	mux.HandleFunc("DELETE /api/comments/{id}", mw.RequireLogin(h.Delete))
}

// CommentBodyRequest is the request body for creating or editing a
// comment.
type CommentBodyRequest struct {
	Body string `json:"body"`
}

// Create handles POST /api/cards/{cid}/comments.
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(r.PathValue("cid"))
	if err != nil {
		writeInvalidID(w, h.logger, "card")
		return
	}

	var req CommentBodyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	comment, err := h.comments.Create(r.Context(), scope, cardID, req.Body)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/cards/{cid}/comments. Returns the card's
// comments oldest first with author profiles attached.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(r.PathValue("cid"))
	if err != nil {
		writeInvalidID(w, h.logger, "card")
		return
	}

	comments, err := h.comments.ListByCard(r.Context(), scope, cardID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, comments); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PATCH /api/comments/{id}. Authors edit their own
// comments; admins can edit any.
func (h *CommentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	commentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeInvalidID(w, h.logger, "comment")
		return
	}

	var req CommentBodyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	comment, err := h.comments.Update(r.Context(), scope, commentID, req.Body)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/comments/{id}.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	commentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeInvalidID(w, h.logger, "comment")
		return
	}

	if err := h.comments.SoftDelete(r.Context(), scope, commentID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

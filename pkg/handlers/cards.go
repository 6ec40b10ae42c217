package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/auth"
	"github.com/roomboard-io/roomboard-engine/pkg/services"
)

// CardsHandler handles card HTTP requests.
type CardsHandler struct {
	cards  services.CardService
	logger *zap.Logger
}

// NewCardsHandler creates a new cards handler.
func NewCardsHandler(cards services.CardService, logger *zap.Logger) *CardsHandler {
	return &CardsHandler{cards: cards, logger: logger}
}

// RegisterRoutes registers the cards handler's routes on the given mux.
func (h *CardsHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("POST /api/boards/{bid}/cards", mw.RequireLogin(h.Create))
	mux.HandleFunc("POST /api/boards/{bid}/cards/reorder", mw.RequireLogin(h.Reorder))
	mux.HandleFunc("GET /api/cards/{cid}", mw.RequireLogin(h.Get))
	mux.HandleFunc("PATCH /api/cards/{cid}", mw.RequireLogin(h.UpdateText))
	mux.HandleFunc("POST /api/cards/{cid}/move", mw.RequireLogin(h.Move))
	mux.HandleFunc("DELETE /api/cards/{cid}", mw.RequireLogin(h.Delete))
	mux.HandleFunc("POST /api/cards/{cid}/restore", mw.RequireLogin(h.Restore))
}

// CreateCardRequest is the request body for creating a card.
type CreateCardRequest struct {
	ColumnID    int64  `json:"column_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create handles POST /api/boards/{bid}/cards. New cards append at the
// tail of their column, subject to the column's WIP limit.
func (h *CardsHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(r.PathValue("bid"))
	if err != nil {
		writeInvalidID(w, h.logger, "board")
		return
	}

	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	card, err := h.cards.Create(r.Context(), scope, boardID, req.ColumnID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, card); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/cards/{cid}.
func (h *CardsHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(r.PathValue("cid"))
	if err != nil {
		writeInvalidID(w, h.logger, "card")
		return
	}

	card, err := h.cards.Get(r.Context(), scope, cardID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, card); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpdateCardRequest is the request body for editing a card's text.
type UpdateCardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateText handles PATCH /api/cards/{cid}.
func (h *CardsHandler) UpdateText(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(r.PathValue("cid"))
	if err != nil {
		writeInvalidID(w, h.logger, "card")
		return
	}

	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	card, err := h.cards.UpdateText(r.Context(), scope, cardID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, card); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// MoveCardRequest is the request body for moving a card between
// columns.
type MoveCardRequest struct {
	ColumnID int64 `json:"column_id"`
}

// Move handles POST /api/cards/{cid}/move. Appends the card at the
// destination's tail and closes the gap it left behind.
func (h *CardsHandler) Move(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(r.PathValue("cid"))
	if err != nil {
		writeInvalidID(w, h.logger, "card")
		return
	}

	var req MoveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	card, err := h.cards.Move(r.Context(), scope, cardID, req.ColumnID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, card); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ReorderCardsRequest is the request body for reordering a column's
// cards.
type ReorderCardsRequest struct {
	ColumnID   int64   `json:"column_id"`
	OrderedIDs []int64 `json:"ordered_ids"`
}

// Reorder handles POST /api/boards/{bid}/cards/reorder. The id list
// must be a permutation of the column's active cards.
func (h *CardsHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(r.PathValue("bid"))
	if err != nil {
		writeInvalidID(w, h.logger, "board")
		return
	}

	var req ReorderCardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	if err := h.cards.Reorder(r.Context(), scope, boardID, req.ColumnID, req.OrderedIDs); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/cards/{cid}. Archives the card and closes
// the position gap.
func (h *CardsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(r.PathValue("cid"))
	if err != nil {
		writeInvalidID(w, h.logger, "card")
		return
	}

	if err := h.cards.SoftDelete(r.Context(), scope, cardID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /api/cards/{cid}/restore. Reappends the card at
// its column's tail, subject to the WIP limit.
func (h *CardsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(r.PathValue("cid"))
	if err != nil {
		writeInvalidID(w, h.logger, "card")
		return
	}

	card, err := h.cards.Restore(r.Context(), scope, cardID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, card); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

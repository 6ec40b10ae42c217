package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/auth"
	"github.com/roomboard-io/roomboard-engine/pkg/services"
)

// ColumnsHandler handles column HTTP requests. Columns are addressed
// by numeric id scoped under their board.
type ColumnsHandler struct {
	columns services.ColumnService
	logger  *zap.Logger
}

// NewColumnsHandler creates a new columns handler.
func NewColumnsHandler(columns services.ColumnService, logger *zap.Logger) *ColumnsHandler {
	return &ColumnsHandler{columns: columns, logger: logger}
}

// RegisterRoutes registers the columns handler's routes on the given mux.
func (h *ColumnsHandler) RegisterRoutes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("POST /api/boards/{bid}/columns", mw.RequireLogin(h.Create))
	mux.HandleFunc("PATCH /api/boards/{bid}/columns/{cid}", mw.RequireLogin(h.Update))
	mux.HandleFunc("POST /api/boards/{bid}/columns/reorder", mw.RequireLogin(h.Reorder))
	mux.HandleFunc("DELETE /api/boards/{bid}/columns/{cid}", mw.RequireLogin(h.Delete))
	mux.HandleFunc("POST /api/boards/{bid}/columns/{cid}/restore", mw.RequireLogin(h.Restore))
}

func columnPathIDs(r *http.Request) (uuid.UUID, int64, error) {
	boardID, err := uuid.Parse(r.PathValue("bid"))
	if err != nil {
		return uuid.Nil, 0, err
	}
	columnID, err := strconv.ParseInt(r.PathValue("cid"), 10, 64)
	if err != nil {
		return uuid.Nil, 0, err
	}
	return boardID, columnID, nil
}

// CreateColumnRequest is the request body for creating a column.
type CreateColumnRequest struct {
	Title    string `json:"title"`
	ParentID *int64 `json:"parent_id,omitempty"`
	WIPLimit *int   `json:"wip_limit,omitempty"`
}

// Create handles POST /api/boards/{bid}/columns. New columns append at
// the tail of their sibling set.
func (h *ColumnsHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(r.PathValue("bid"))
	if err != nil {
		writeInvalidID(w, h.logger, "board")
		return
	}

	var req CreateColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	column, err := h.columns.Create(r.Context(), scope, boardID, services.ColumnInput{
		Title:    req.Title,
		ParentID: req.ParentID,
		WIPLimit: req.WIPLimit,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, column); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpdateColumnRequest is the request body for updating a column.
type UpdateColumnRequest struct {
	Title    string `json:"title"`
	WIPLimit *int   `json:"wip_limit,omitempty"`
}

// Update handles PATCH /api/boards/{bid}/columns/{cid}. Updates title
// and WIP limit; position changes go through reorder.
func (h *ColumnsHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, columnID, err := columnPathIDs(r)
	if err != nil {
		writeInvalidID(w, h.logger, "column")
		return
	}

	var req UpdateColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	column, err := h.columns.Update(r.Context(), scope, boardID, columnID, req.Title, req.WIPLimit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, column); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ReorderColumnsRequest is the request body for reordering a sibling
// set of columns. A nil parent_id targets the board's top level.
type ReorderColumnsRequest struct {
	ParentID   *int64  `json:"parent_id,omitempty"`
	OrderedIDs []int64 `json:"ordered_ids"`
}

// Reorder handles POST /api/boards/{bid}/columns/reorder. The id list
// must be a permutation of the active columns under the parent.
func (h *ColumnsHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(r.PathValue("bid"))
	if err != nil {
		writeInvalidID(w, h.logger, "board")
		return
	}

	var req ReorderColumnsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, h.logger)
		return
	}

	if err := h.columns.Reorder(r.Context(), scope, boardID, req.ParentID, req.OrderedIDs); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/boards/{bid}/columns/{cid}. Archives the
// column and its cards; refused while active child columns remain.
func (h *ColumnsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, columnID, err := columnPathIDs(r)
	if err != nil {
		writeInvalidID(w, h.logger, "column")
		return
	}

	if err := h.columns.SoftDelete(r.Context(), scope, boardID, columnID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /api/boards/{bid}/columns/{cid}/restore.
// Reappends the column at the tail and brings its archived cards back
// with it, subject to the WIP limit.
func (h *ColumnsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r, h.logger)
	if !ok {
		return
	}

	boardID, columnID, err := columnPathIDs(r)
	if err != nil {
		writeInvalidID(w, h.logger, "column")
		return
	}

	column, err := h.columns.Restore(r.Context(), scope, boardID, columnID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, column); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

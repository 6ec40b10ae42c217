package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
)

func TestCardsHandler_Create(t *testing.T) {
	boardID := uuid.New()
	cardID := uuid.New()
	svc := &mockCardService{
		createFn: func(ctx context.Context, scope *authz.RequestScope, gotBoard uuid.UUID, columnID int64, title, description string) (*models.Card, error) {
			if gotBoard != boardID {
				t.Errorf("expected board %s, got %s", boardID, gotBoard)
			}
			if columnID != 4 {
				t.Errorf("expected column 4, got %d", columnID)
			}
			return &models.Card{PublicID: cardID, ColumnID: columnID, Title: title, Description: description, Position: 2}, nil
		},
	}
	handler := NewCardsHandler(svc, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/boards/{bid}/cards", handler.Create)

	body := `{"column_id":4,"title":"Write release notes","description":"for 2.1"}`
	req := authedRequest(http.MethodPost, "/api/boards/"+boardID.String()+"/cards", strings.NewReader(body), 7)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}

	var card models.Card
	if err := json.NewDecoder(rec.Body).Decode(&card); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if card.Title != "Write release notes" {
		t.Errorf("unexpected title %q", card.Title)
	}
	if card.Position != 2 {
		t.Errorf("expected position 2, got %d", card.Position)
	}
}

func TestCardsHandler_Create_WIPLimit(t *testing.T) {
	svc := &mockCardService{
		createFn: func(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, title, description string) (*models.Card, error) {
			return nil, &apperrors.WIPLimitError{ColumnTitle: "Doing", Limit: 3}
		},
	}
	handler := NewCardsHandler(svc, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/boards/{bid}/cards", handler.Create)

	req := authedRequest(http.MethodPost, "/api/boards/"+uuid.NewString()+"/cards", strings.NewReader(`{"column_id":4,"title":"x"}`), 7)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] != "wip_limit_reached" {
		t.Errorf("expected wip_limit_reached, got %q", body["error"])
	}
}

func TestCardsHandler_Move(t *testing.T) {
	cardID := uuid.New()
	svc := &mockCardService{
		moveFn: func(ctx context.Context, scope *authz.RequestScope, gotCard uuid.UUID, destColumnID int64) (*models.Card, error) {
			if gotCard != cardID {
				t.Errorf("expected card %s, got %s", cardID, gotCard)
			}
			if destColumnID != 9 {
				t.Errorf("expected destination 9, got %d", destColumnID)
			}
			return &models.Card{PublicID: cardID, ColumnID: destColumnID, Position: 0}, nil
		},
	}
	handler := NewCardsHandler(svc, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cards/{cid}/move", handler.Move)

	req := authedRequest(http.MethodPost, "/api/cards/"+cardID.String()+"/move", strings.NewReader(`{"column_id":9}`), 7)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestCardsHandler_Move_InvalidID(t *testing.T) {
	handler := NewCardsHandler(&mockCardService{}, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cards/{cid}/move", handler.Move)

	req := authedRequest(http.MethodPost, "/api/cards/12345/move", strings.NewReader(`{"column_id":9}`), 7)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCardsHandler_Reorder(t *testing.T) {
	boardID := uuid.New()
	var gotIDs []int64
	svc := &mockCardService{
		reorderFn: func(ctx context.Context, scope *authz.RequestScope, gotBoard uuid.UUID, columnID int64, orderedIDs []int64) error {
			gotIDs = orderedIDs
			return nil
		},
	}
	handler := NewCardsHandler(svc, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/boards/{bid}/cards/reorder", handler.Reorder)

	body := `{"column_id":4,"ordered_ids":[3,1,2]}`
	req := authedRequest(http.MethodPost, "/api/boards/"+boardID.String()+"/cards/reorder", strings.NewReader(body), 7)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if len(gotIDs) != 3 || gotIDs[0] != 3 || gotIDs[1] != 1 || gotIDs[2] != 2 {
		t.Errorf("unexpected ordered ids %v", gotIDs)
	}
}

func TestCardsHandler_Reorder_NonPermutation(t *testing.T) {
	svc := &mockCardService{
		reorderFn: func(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, orderedIDs []int64) error {
			return apperrors.Validation("ordered_ids", "must list every active card exactly once")
		},
	}
	handler := NewCardsHandler(svc, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/boards/{bid}/cards/reorder", handler.Reorder)

	req := authedRequest(http.MethodPost, "/api/boards/"+uuid.NewString()+"/cards/reorder", strings.NewReader(`{"column_id":4,"ordered_ids":[1]}`), 7)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCardsHandler_Restore_ArchivedColumnConflict(t *testing.T) {
	svc := &mockCardService{
		restoreFn: func(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) (*models.Card, error) {
			return nil, apperrors.ErrConflict
		},
	}
	handler := NewCardsHandler(svc, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cards/{cid}/restore", handler.Restore)

	req := authedRequest(http.MethodPost, "/api/cards/"+uuid.NewString()+"/restore", nil, 7)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

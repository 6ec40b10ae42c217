package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
)

func boardSvc(role authz.Role, boards *mockBoardRepo) BoardService {
	gate := gateFor(42, map[int64]authz.Role{99: role})
	return NewBoardService(&fakeTx{}, gate, boards, zap.NewNop())
}

func TestBoardCreate_SetsRoomFromAuthorization(t *testing.T) {
	var created *models.Board
	boards := &mockBoardRepo{
		createFn: func(ctx context.Context, board *models.Board) error {
			board.ID = 1
			created = board
			return nil
		},
	}
	svc := boardSvc(authz.RoleMember, boards)

	board, err := svc.Create(context.Background(), authz.NewRequestScope(99), uuid.New(), "Sprint 12")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.RoomID != 1 {
		t.Errorf("room id must come from the authorization result, got %d", created.RoomID)
	}
	if board.PublicID == uuid.Nil {
		t.Error("expected a public id to be assigned")
	}
}

func TestBoardCreate_ViewerIsDenied(t *testing.T) {
	svc := boardSvc(authz.RoleViewer, &mockBoardRepo{})

	_, err := svc.Create(context.Background(), authz.NewRequestScope(99), uuid.New(), "Sprint 12")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a viewer, got %v", err)
	}
}

func TestBoardRename_ConflictsWithExistingName(t *testing.T) {
	boards := &mockBoardRepo{
		getByPublicIDFn: func(ctx context.Context, roomID int64, publicID uuid.UUID, includeDeleted bool) (*models.Board, error) {
			return &models.Board{ID: 1, RoomID: roomID, PublicID: publicID, Name: "Sprint 12"}, nil
		},
		nameTakenFn: func(ctx context.Context, roomID int64, name string) (bool, error) {
			return true, nil
		},
	}
	svc := boardSvc(authz.RoleMember, boards)

	_, err := svc.Rename(context.Background(), authz.NewRequestScope(99), uuid.New(), "Sprint 13")
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected ErrConflict for a taken name, got %v", err)
	}
}

func TestBoardRename_SameNameIsANoop(t *testing.T) {
	boards := &mockBoardRepo{
		getByPublicIDFn: func(ctx context.Context, roomID int64, publicID uuid.UUID, includeDeleted bool) (*models.Board, error) {
			return &models.Board{ID: 1, RoomID: roomID, PublicID: publicID, Name: "Sprint 12"}, nil
		},
	}
	svc := boardSvc(authz.RoleMember, boards)

	board, err := svc.Rename(context.Background(), authz.NewRequestScope(99), uuid.New(), "Sprint 12")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if board.Name != "Sprint 12" {
		t.Errorf("unexpected name %q", board.Name)
	}
}

func TestBoardSoftDelete_ArchivesContentsFirst(t *testing.T) {
	var order []string
	boards := &mockBoardRepo{
		getByPublicIDFn: func(ctx context.Context, roomID int64, publicID uuid.UUID, includeDeleted bool) (*models.Board, error) {
			return &models.Board{ID: 1, RoomID: roomID, PublicID: publicID, Name: "Sprint 12"}, nil
		},
		softDeleteContentsFn: func(ctx context.Context, id, actorID int64) error {
			order = append(order, "contents")
			return nil
		},
		softDeleteFn: func(ctx context.Context, id, actorID int64) error {
			order = append(order, "board")
			return nil
		},
	}
	svc := boardSvc(authz.RoleMember, boards)

	if err := svc.SoftDelete(context.Background(), authz.NewRequestScope(99), uuid.New()); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if len(order) != 2 || order[0] != "contents" || order[1] != "board" {
		t.Errorf("expected contents then board, got %v", order)
	}
}

func TestBoardRestore_NameMustStillBeFree(t *testing.T) {
	now := time.Now()
	boards := &mockBoardRepo{
		getByPublicIDFn: func(ctx context.Context, roomID int64, publicID uuid.UUID, includeDeleted bool) (*models.Board, error) {
			return &models.Board{ID: 1, RoomID: roomID, PublicID: publicID, Name: "Sprint 12", DeletedAt: &now}, nil
		},
		nameTakenFn: func(ctx context.Context, roomID int64, name string) (bool, error) {
			return true, nil
		},
	}
	svc := boardSvc(authz.RoleMember, boards)

	_, err := svc.Restore(context.Background(), authz.NewRequestScope(99), uuid.New())
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected ErrConflict when an active board took the name, got %v", err)
	}
}

func TestBoardView_ReturnsColumnsInOrder(t *testing.T) {
	boards := &mockBoardRepo{
		getByPublicIDFn: func(ctx context.Context, roomID int64, publicID uuid.UUID, includeDeleted bool) (*models.Board, error) {
			return &models.Board{ID: 1, RoomID: roomID, PublicID: publicID, Name: "Sprint 12"}, nil
		},
		activeColumnsWithCardsFn: func(ctx context.Context, boardID int64) ([]*models.ColumnView, error) {
			return []*models.ColumnView{
				{Column: &models.Column{ID: 10, Position: 0, Title: "To Do"}},
				{Column: &models.Column{ID: 11, Position: 1, Title: "Doing"}},
			}, nil
		},
	}
	svc := boardSvc(authz.RoleViewer, boards)

	view, err := svc.View(context.Background(), authz.NewRequestScope(99), uuid.New())
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(view.Columns) != 2 || view.Columns[0].Column.Title != "To Do" {
		t.Errorf("unexpected view %+v", view.Columns)
	}
}

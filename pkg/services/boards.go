package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
	"github.com/roomboard-io/roomboard-engine/pkg/repositories"
)

// BoardService manages boards and their aggregate views.
type BoardService interface {
	Create(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID, name string) (*models.Board, error)
	List(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID) ([]*models.Board, error)
	View(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID) (*models.BoardView, error)
	Rename(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, name string) (*models.Board, error)
	SoftDelete(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID) error
	Restore(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID) (*models.Board, error)
	Archived(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID) (*models.ArchivedItems, error)
}

type boardService struct {
	db     TxRunner
	gate   *authz.Gate
	boards repositories.BoardRepository
	logger *zap.Logger
}

// NewBoardService creates a new board service.
func NewBoardService(db TxRunner, gate *authz.Gate, boards repositories.BoardRepository, logger *zap.Logger) BoardService {
	return &boardService{db: db, gate: gate, boards: boards, logger: logger}
}

// Create adds a board to the room. Names are unique among the room's
// active boards.
func (s *boardService) Create(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID, name string) (*models.Board, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermBoardCreate, authz.RoomRef(roomID), authz.Options{})
	if err != nil {
		return nil, err
	}
	name, err = validName(name)
	if err != nil {
		return nil, err
	}

	board := &models.Board{
		PublicID: uuid.New(),
		RoomID:   authCtx.RoomID,
		Name:     name,
	}
	if err := s.boards.Create(ctx, board); err != nil {
		return nil, err
	}

	s.logger.Info("board created",
		zap.String("room", roomID.String()),
		zap.String("board", board.PublicID.String()))
	return board, nil
}

// List returns the room's active boards.
func (s *boardService) List(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID) ([]*models.Board, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermBoardRead, authz.RoomRef(roomID), authz.Options{})
	if err != nil {
		return nil, err
	}
	return s.boards.ListActiveByRoom(ctx, authCtx.RoomID)
}

// View returns the board and its active columns in position order,
// each with its active cards in position order.
func (s *boardService) View(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID) (*models.BoardView, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermBoardRead, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return nil, err
	}
	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return nil, err
	}
	columns, err := s.boards.ActiveColumnsWithCards(ctx, board.ID)
	if err != nil {
		return nil, err
	}
	return &models.BoardView{Board: board, Columns: columns}, nil
}

// Rename changes the board's name, keeping it unique within the room.
func (s *boardService) Rename(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, name string) (*models.Board, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermBoardUpdate, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return nil, err
	}
	name, err = validName(name)
	if err != nil {
		return nil, err
	}

	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return nil, err
	}
	if board.Name != name {
		taken, err := s.boards.NameTaken(ctx, authCtx.RoomID, name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: a board named %q already exists", apperrors.ErrConflict, name)
		}
		if err := s.boards.Rename(ctx, board.ID, name); err != nil {
			return nil, err
		}
		board.Name = name
	}
	return board, nil
}

// SoftDelete archives the board together with its columns and cards
// so archived views stay self-consistent.
func (s *boardService) SoftDelete(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID) error {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermBoardDelete, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return err
	}
	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return err
	}
	return s.db.InTx(ctx, func(ctx context.Context) error {
		if err := s.boards.SoftDeleteContents(ctx, board.ID, scope.UserID); err != nil {
			return err
		}
		return s.boards.SoftDelete(ctx, board.ID, scope.UserID)
	})
}

// Restore un-archives the board row only; its archived columns and
// cards are restored individually. Fails if an active board has since
// taken the name.
func (s *boardService) Restore(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID) (*models.Board, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermBoardRestore, authz.BoardRef(boardID), authz.Options{AllowDeleted: true})
	if err != nil {
		return nil, err
	}
	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, true)
	if err != nil {
		return nil, err
	}
	if !board.IsDeleted() {
		return board, nil
	}

	taken, err := s.boards.NameTaken(ctx, authCtx.RoomID, board.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: a board named %q already exists", apperrors.ErrConflict, board.Name)
	}
	if err := s.boards.Restore(ctx, board.ID); err != nil {
		return nil, err
	}
	board.DeletedAt = nil
	board.DeletedByID = nil
	return board, nil
}

// Archived lists the board's soft-deleted columns and cards, most
// recently deleted first.
func (s *boardService) Archived(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID) (*models.ArchivedItems, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermBoardRead, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return nil, err
	}
	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return nil, err
	}
	return s.boards.ArchivedItems(ctx, board.ID)
}

var _ BoardService = (*boardService)(nil)

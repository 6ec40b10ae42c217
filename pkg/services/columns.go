package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
	"github.com/roomboard-io/roomboard-engine/pkg/repositories"
)

const maxWIPLimit = 999

// ColumnInput carries the caller-editable column fields.
type ColumnInput struct {
	Title    string
	ParentID *int64
	WIPLimit *int
}

// ColumnService manages a board's columns: creation, editing,
// ordering, cascade archival, and cascade restore.
type ColumnService interface {
	Create(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, input ColumnInput) (*models.Column, error)
	Update(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, title string, wipLimit *int) (*models.Column, error)
	Reorder(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, parentID *int64, orderedIDs []int64) error
	SoftDelete(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64) error
	Restore(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64) (*models.Column, error)
}

type columnService struct {
	db       TxRunner
	gate     *authz.Gate
	boards   repositories.BoardRepository
	columns  repositories.ColumnRepository
	cards    repositories.CardRepository
	ordering *OrderingEngine
	logger   *zap.Logger
}

// NewColumnService creates a new column service.
func NewColumnService(
	db TxRunner,
	gate *authz.Gate,
	boards repositories.BoardRepository,
	columns repositories.ColumnRepository,
	cards repositories.CardRepository,
	ordering *OrderingEngine,
	logger *zap.Logger,
) ColumnService {
	return &columnService{
		db:       db,
		gate:     gate,
		boards:   boards,
		columns:  columns,
		cards:    cards,
		ordering: ordering,
		logger:   logger,
	}
}

// Create appends a column at the end of its sibling set: the board's
// top level, or the children of the given parent. Columns nest at most
// one level deep.
func (s *columnService) Create(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, input ColumnInput) (*models.Column, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermColumnCreate, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return nil, err
	}
	title, err := validColumnTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if err := validWIPLimit(input.WIPLimit); err != nil {
		return nil, err
	}

	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		parent, err := s.columns.Get(ctx, board.ID, *input.ParentID, false)
		if err != nil {
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, apperrors.Validation("parent_id", "columns nest at most one level deep")
		}
	}

	column := &models.Column{
		BoardID:    board.ID,
		ParentID:   input.ParentID,
		Title:      title,
		WIPLimit:   input.WIPLimit,
		ColumnType: models.ColumnTypeStandard,
	}
	err = s.db.InTx(ctx, func(ctx context.Context) error {
		position, err := s.ordering.Append(ctx, models.ColumnScope(board.ID, input.ParentID))
		if err != nil {
			return err
		}
		column.Position = position
		return s.columns.Create(ctx, column)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("column created",
		zap.String("board", boardID.String()),
		zap.Int64("column_id", column.ID))
	return column, nil
}

// Update edits the column's title and WIP limit. Lowering the limit
// below the current active card count is allowed; the limit only
// blocks new arrivals.
func (s *columnService) Update(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, title string, wipLimit *int) (*models.Column, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermColumnUpdate, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return nil, err
	}
	title, err = validColumnTitle(title)
	if err != nil {
		return nil, err
	}
	if err := validWIPLimit(wipLimit); err != nil {
		return nil, err
	}

	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return nil, err
	}
	column, err := s.columns.Get(ctx, board.ID, columnID, false)
	if err != nil {
		return nil, err
	}
	column.Title = title
	column.WIPLimit = wipLimit
	if err := s.columns.Update(ctx, column); err != nil {
		return nil, err
	}
	return column, nil
}

// Reorder applies the caller's full ordering of one sibling set.
func (s *columnService) Reorder(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, parentID *int64, orderedIDs []int64) error {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermColumnUpdate, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return err
	}
	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return err
	}
	return s.db.InTx(ctx, func(ctx context.Context) error {
		return s.ordering.Reorder(ctx, models.ColumnScope(board.ID, parentID), orderedIDs)
	})
}

// SoftDelete archives the column and its cards, then renumbers the
// remaining siblings so positions stay gap-free. A column with active
// child columns cannot be archived.
func (s *columnService) SoftDelete(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64) error {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermColumnDelete, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return err
	}
	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return err
	}
	column, err := s.columns.Get(ctx, board.ID, columnID, false)
	if err != nil {
		return err
	}
	siblings := models.ColumnScope(board.ID, column.ParentID)
	return s.db.InTx(ctx, func(ctx context.Context) error {
		if err := s.ordering.repo.LockScope(ctx, siblings); err != nil {
			return err
		}
		// Nested creates serialize on the board row lock, so this
		// check cannot race a child being added.
		hasChildren, err := s.columns.HasActiveChildren(ctx, column.ID)
		if err != nil {
			return err
		}
		if hasChildren {
			return fmt.Errorf("%w: column still has active child columns", apperrors.ErrConflict)
		}
		if err := s.columns.SoftDeleteCards(ctx, column.ID, scope.UserID); err != nil {
			return err
		}
		if err := s.columns.SoftDelete(ctx, column.ID, scope.UserID); err != nil {
			return err
		}
		return s.ordering.Compact(ctx, siblings)
	})
}

// Restore un-archives the column at the tail of its sibling set and
// brings its cards back with it in their prior relative order. The
// parent column (when nested) must be active.
func (s *columnService) Restore(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64) (*models.Column, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermColumnCreate, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return nil, err
	}
	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return nil, err
	}
	column, err := s.columns.Get(ctx, board.ID, columnID, true)
	if err != nil {
		return nil, err
	}
	if !column.IsDeleted() {
		return column, nil
	}
	if column.ParentID != nil {
		if _, err := s.columns.Get(ctx, board.ID, *column.ParentID, false); err != nil {
			return nil, fmt.Errorf("%w: parent column is archived", apperrors.ErrConflict)
		}
	}

	siblings := models.ColumnScope(board.ID, column.ParentID)
	err = s.db.InTx(ctx, func(ctx context.Context) error {
		if err := s.ordering.repo.LockScope(ctx, siblings); err != nil {
			return err
		}
		position, err := s.ordering.repo.NextPosition(ctx, siblings)
		if err != nil {
			return err
		}
		if err := s.columns.Restore(ctx, column.ID, position); err != nil {
			return err
		}
		column.Position = position
		column.DeletedAt = nil
		column.DeletedByID = nil

		cardIDs, err := s.columns.DeletedCardIDs(ctx, column.ID)
		if err != nil {
			return err
		}
		if len(cardIDs) == 0 {
			return nil
		}
		if column.WIPLimit != nil && len(cardIDs) > *column.WIPLimit {
			return &apperrors.WIPLimitError{ColumnTitle: column.Title, Limit: *column.WIPLimit}
		}
		if err := s.cards.RestoreMany(ctx, cardIDs); err != nil {
			return err
		}
		// Renumber the restored cards densely in their prior order.
		for i, id := range cardIDs {
			if err := s.cards.SetPosition(ctx, id, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("column restored",
		zap.String("board", boardID.String()),
		zap.Int64("column_id", column.ID))
	return column, nil
}

// validColumnTitle trims and bounds a column title.
func validColumnTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.Validation("title", "title must not be empty")
	}
	if len(title) > maxNameLength {
		return "", apperrors.Validation("title", "title must be at most %d characters", maxNameLength)
	}
	return title, nil
}

// validWIPLimit bounds a WIP limit; nil means unlimited. Zero is a
// valid limit that freezes the column to new cards.
func validWIPLimit(limit *int) error {
	if limit == nil {
		return nil
	}
	if *limit < 0 || *limit > maxWIPLimit {
		return apperrors.Validation("wip_limit", "wip_limit must be between 0 and %d", maxWIPLimit)
	}
	return nil
}

var _ ColumnService = (*columnService)(nil)

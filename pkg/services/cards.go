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

const (
	maxCardTitleLength       = 500
	maxCardDescriptionLength = 10000
)

// CardService manages cards: creation under WIP limits, edits, moves
// between columns, in-column ordering, archival, and restore.
type CardService interface {
	Create(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, title, description string) (*models.Card, error)
	Get(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) (*models.Card, error)
	UpdateText(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID, title, description string) (*models.Card, error)
	Move(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID, destColumnID int64) (*models.Card, error)
	Reorder(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, orderedIDs []int64) error
	SoftDelete(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) error
	Restore(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) (*models.Card, error)
}

type cardService struct {
	db       TxRunner
	gate     *authz.Gate
	boards   repositories.BoardRepository
	columns  repositories.ColumnRepository
	cards    repositories.CardRepository
	ordering *OrderingEngine
	logger   *zap.Logger
}

// NewCardService creates a new card service.
func NewCardService(
	db TxRunner,
	gate *authz.Gate,
	boards repositories.BoardRepository,
	columns repositories.ColumnRepository,
	cards repositories.CardRepository,
	ordering *OrderingEngine,
	logger *zap.Logger,
) CardService {
	return &cardService{
		db:       db,
		gate:     gate,
		boards:   boards,
		columns:  columns,
		cards:    cards,
		ordering: ordering,
		logger:   logger,
	}
}

// Create appends a card at the end of the column, subject to the
// column's WIP limit.
func (s *cardService) Create(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, title, description string) (*models.Card, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermCardCreate, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return nil, err
	}
	title, description, err = validCardText(title, description)
	if err != nil {
		return nil, err
	}

	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return nil, err
	}
	if _, err := s.columns.Get(ctx, board.ID, columnID, false); err != nil {
		return nil, err
	}

	card := &models.Card{
		PublicID:    uuid.New(),
		BoardID:     board.ID,
		ColumnID:    columnID,
		AuthorID:    scope.UserID,
		Title:       title,
		Description: description,
	}
	err = s.db.InTx(ctx, func(ctx context.Context) error {
		position, err := s.ordering.AppendWithCapacity(ctx, models.CardScope(columnID))
		if err != nil {
			return err
		}
		card.Position = position
		return s.cards.Create(ctx, card)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("card created",
		zap.String("card", card.PublicID.String()),
		zap.Int64("column_id", columnID))
	return card, nil
}

// Get returns one card the caller can read.
func (s *cardService) Get(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) (*models.Card, error) {
	return s.fetch(ctx, scope, authz.PermCardRead, cardID, false)
}

// UpdateText edits the card's title and description.
func (s *cardService) UpdateText(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID, title, description string) (*models.Card, error) {
	card, err := s.fetch(ctx, scope, authz.PermCardUpdate, cardID, false)
	if err != nil {
		return nil, err
	}
	title, description, err = validCardText(title, description)
	if err != nil {
		return nil, err
	}
	if err := s.cards.UpdateText(ctx, card.ID, title, description); err != nil {
		return nil, err
	}
	card.Title = title
	card.Description = description
	return card, nil
}

// Move relocates the card to the tail of another column on the same
// board, subject to the destination's WIP limit. The source column is
// renumbered so it stays gap-free.
func (s *cardService) Move(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID, destColumnID int64) (*models.Card, error) {
	card, err := s.fetch(ctx, scope, authz.PermCardUpdate, cardID, false)
	if err != nil {
		return nil, err
	}
	if _, err := s.columns.Get(ctx, card.BoardID, destColumnID, false); err != nil {
		return nil, err
	}

	err = s.db.InTx(ctx, func(ctx context.Context) error {
		// Re-read inside the transaction; the pre-check snapshot may
		// be stale by the time the locks are taken.
		current, err := s.cards.Lookup(ctx, cardID, false)
		if err != nil {
			return err
		}
		card = current
		if card.ColumnID == destColumnID {
			return nil
		}
		position, err := s.ordering.Move(ctx, models.CardScope(card.ColumnID), models.CardScope(destColumnID), card.ID)
		if err != nil {
			return err
		}
		card.ColumnID = destColumnID
		card.Position = position
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("card moved",
		zap.String("card", cardID.String()),
		zap.Int64("column_id", destColumnID))
	return card, nil
}

// Reorder applies the caller's full ordering of the column's active
// cards.
func (s *cardService) Reorder(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, orderedIDs []int64) error {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermCardUpdate, authz.BoardRef(boardID), authz.Options{})
	if err != nil {
		return err
	}
	board, err := s.boards.GetByPublicID(ctx, authCtx.RoomID, boardID, false)
	if err != nil {
		return err
	}
	if _, err := s.columns.Get(ctx, board.ID, columnID, false); err != nil {
		return err
	}
	return s.db.InTx(ctx, func(ctx context.Context) error {
		return s.ordering.Reorder(ctx, models.CardScope(columnID), orderedIDs)
	})
}

// SoftDelete archives the card and renumbers its column.
func (s *cardService) SoftDelete(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) error {
	card, err := s.fetch(ctx, scope, authz.PermCardDelete, cardID, false)
	if err != nil {
		return err
	}
	siblings := models.CardScope(card.ColumnID)
	return s.db.InTx(ctx, func(ctx context.Context) error {
		if err := s.ordering.repo.LockScope(ctx, siblings); err != nil {
			return err
		}
		if err := s.cards.SoftDelete(ctx, card.ID, scope.UserID); err != nil {
			return err
		}
		return s.ordering.Compact(ctx, siblings)
	})
}

// Restore un-archives the card at the tail of its column. The column
// must be active, and the WIP limit is re-validated: a limit lowered
// since the card was archived keeps it archived.
func (s *cardService) Restore(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) (*models.Card, error) {
	card, err := s.fetch(ctx, scope, authz.PermCardRestore, cardID, true)
	if err != nil {
		return nil, err
	}
	if !card.IsDeleted() {
		return card, nil
	}
	if _, err := s.columns.Get(ctx, card.BoardID, card.ColumnID, false); err != nil {
		return nil, fmt.Errorf("%w: the card's column is archived", apperrors.ErrConflict)
	}

	err = s.db.InTx(ctx, func(ctx context.Context) error {
		position, err := s.ordering.Restore(ctx, models.CardScope(card.ColumnID), card.ID)
		if err != nil {
			return err
		}
		card.Position = position
		card.DeletedAt = nil
		card.DeletedByID = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// fetch authorizes the permission against the card and loads it.
func (s *cardService) fetch(ctx context.Context, scope *authz.RequestScope, permission authz.Permission, cardID uuid.UUID, includeDeleted bool) (*models.Card, error) {
	if _, err := s.gate.Authorize(ctx, scope, permission, authz.CardRef(cardID), authz.Options{AllowDeleted: includeDeleted}); err != nil {
		return nil, err
	}
	return s.cards.Lookup(ctx, cardID, includeDeleted)
}

// validCardText trims and bounds a card's title and description.
func validCardText(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", apperrors.Validation("title", "title must not be empty")
	}
	if len(title) > maxCardTitleLength {
		return "", "", apperrors.Validation("title", "title must be at most %d characters", maxCardTitleLength)
	}
	if len(description) > maxCardDescriptionLength {
		return "", "", apperrors.Validation("description", "description must be at most %d characters", maxCardDescriptionLength)
	}
	return title, description, nil
}

var _ CardService = (*cardService)(nil)

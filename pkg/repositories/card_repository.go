package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/database"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
)

// CardRepository defines the interface for card data access.
type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	GetByPublicID(ctx context.Context, boardID int64, publicID uuid.UUID, includeDeleted bool) (*models.Card, error)
	Lookup(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Card, error)
	UpdateText(ctx context.Context, id int64, title, description string) error
	SoftDelete(ctx context.Context, id, actorID int64) error
	RestoreMany(ctx context.Context, ids []int64) error
	SetPosition(ctx context.Context, id int64, position int) error
}

type cardRepository struct {
	db *database.DB
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db *database.DB) CardRepository {
	return &cardRepository{db: db}
}

const cardColumnList = `id, public_id, board_id, column_id, author_id, title, description, position, created_at, updated_at, deleted_at, deleted_by_id`

func scanCard(row pgx.Row) (*models.Card, error) {
	var c models.Card
	err := row.Scan(&c.ID, &c.PublicID, &c.BoardID, &c.ColumnID, &c.AuthorID,
		&c.Title, &c.Description, &c.Position,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt, &c.DeletedByID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}
	return &c, nil
}

func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	if card.PublicID == uuid.Nil {
		card.PublicID = uuid.New()
	}

	query := `
		INSERT INTO cards (public_id, board_id, column_id, author_id, title, description, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING id, created_at, updated_at`

	err := querier(ctx, r.db).QueryRow(ctx, query,
		card.PublicID, card.BoardID, card.ColumnID, card.AuthorID,
		card.Title, card.Description, card.Position).
		Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *cardRepository) GetByPublicID(ctx context.Context, boardID int64, publicID uuid.UUID, includeDeleted bool) (*models.Card, error) {
	query := `SELECT ` + cardColumnList + ` FROM cards WHERE board_id = $1 AND public_id = $2`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	return scanCard(querier(ctx, r.db).QueryRow(ctx, query, boardID, publicID))
}

// Lookup fetches a card by public id alone. Callers must have already
// authorized access through the resolution chain.
func (r *cardRepository) Lookup(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Card, error) {
	query := `SELECT ` + cardColumnList + ` FROM cards WHERE public_id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	return scanCard(querier(ctx, r.db).QueryRow(ctx, query, publicID))
}

func (r *cardRepository) UpdateText(ctx context.Context, id int64, title, description string) error {
	query := `
		UPDATE cards SET title = $2, description = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, title, description)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *cardRepository) SoftDelete(ctx context.Context, id, actorID int64) error {
	query := `
		UPDATE cards SET deleted_at = now(), deleted_by_id = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, actorID)
	if err != nil {
		return fmt.Errorf("failed to soft-delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *cardRepository) RestoreMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE cards SET deleted_at = NULL, deleted_by_id = NULL, updated_at = now()
		WHERE id = ANY($1)`

	if _, err := querier(ctx, r.db).Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("failed to restore cards: %w", err)
	}
	return nil
}

func (r *cardRepository) SetPosition(ctx context.Context, id int64, position int) error {
	query := `UPDATE cards SET position = $2, updated_at = now() WHERE id = $1`

	if _, err := querier(ctx, r.db).Exec(ctx, query, id, position); err != nil {
		return fmt.Errorf("failed to set card position: %w", err)
	}
	return nil
}

var _ CardRepository = (*cardRepository)(nil)

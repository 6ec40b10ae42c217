package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/database"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
)

// ColumnRepository defines the interface for board column data access.
type ColumnRepository interface {
	Create(ctx context.Context, column *models.Column) error
	Get(ctx context.Context, boardID, id int64, includeDeleted bool) (*models.Column, error)
	Update(ctx context.Context, column *models.Column) error
	SoftDelete(ctx context.Context, id, actorID int64) error
	// SoftDeleteCards archives the column's active cards together with
	// the column.
	SoftDeleteCards(ctx context.Context, columnID, actorID int64) error
	Restore(ctx context.Context, id int64, position int) error
	// DeletedCardIDs lists the column's soft-deleted cards in prior
	// position order, for cascade restore.
	DeletedCardIDs(ctx context.Context, columnID int64) ([]int64, error)
	// HasActiveChildren reports whether any active column nests under
	// this one.
	HasActiveChildren(ctx context.Context, id int64) (bool, error)
}

type columnRepository struct {
	db *database.DB
}

// NewColumnRepository creates a new column repository.
func NewColumnRepository(db *database.DB) ColumnRepository {
	return &columnRepository{db: db}
}

const columnColumns = `id, board_id, parent_id, title, position, wip_limit, column_type, created_at, updated_at, deleted_at, deleted_by_id`

func scanColumn(row pgx.Row) (*models.Column, error) {
	var c models.Column
	err := row.Scan(&c.ID, &c.BoardID, &c.ParentID, &c.Title, &c.Position, &c.WIPLimit,
		&c.ColumnType, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt, &c.DeletedByID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan column: %w", err)
	}
	return &c, nil
}

func (r *columnRepository) Create(ctx context.Context, column *models.Column) error {
	if column.ColumnType == "" {
		column.ColumnType = models.ColumnTypeStandard
	}

	query := `
		INSERT INTO board_columns (board_id, parent_id, title, position, wip_limit, column_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING id, created_at, updated_at`

	err := querier(ctx, r.db).QueryRow(ctx, query,
		column.BoardID, column.ParentID, column.Title, column.Position, column.WIPLimit, column.ColumnType).
		Scan(&column.ID, &column.CreatedAt, &column.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create column: %w", err)
	}
	return nil
}

func (r *columnRepository) Get(ctx context.Context, boardID, id int64, includeDeleted bool) (*models.Column, error) {
	query := `SELECT ` + columnColumns + ` FROM board_columns WHERE board_id = $1 AND id = $2`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	return scanColumn(querier(ctx, r.db).QueryRow(ctx, query, boardID, id))
}

func (r *columnRepository) Update(ctx context.Context, column *models.Column) error {
	query := `
		UPDATE board_columns SET title = $2, wip_limit = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, column.ID, column.Title, column.WIPLimit)
	if err != nil {
		return fmt.Errorf("failed to update column: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *columnRepository) SoftDelete(ctx context.Context, id, actorID int64) error {
	query := `
		UPDATE board_columns SET deleted_at = now(), deleted_by_id = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, actorID)
	if err != nil {
		return fmt.Errorf("failed to soft-delete column: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *columnRepository) SoftDeleteCards(ctx context.Context, columnID, actorID int64) error {
	query := `
		UPDATE cards SET deleted_at = now(), deleted_by_id = $2, updated_at = now()
		WHERE column_id = $1 AND deleted_at IS NULL`

	if _, err := querier(ctx, r.db).Exec(ctx, query, columnID, actorID); err != nil {
		return fmt.Errorf("failed to archive column cards: %w", err)
	}
	return nil
}

func (r *columnRepository) Restore(ctx context.Context, id int64, position int) error {
	query := `
		UPDATE board_columns SET deleted_at = NULL, deleted_by_id = NULL, position = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NOT NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, position)
	if err != nil {
		return fmt.Errorf("failed to restore column: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *columnRepository) DeletedCardIDs(ctx context.Context, columnID int64) ([]int64, error) {
	query := `
		SELECT id FROM cards
		WHERE column_id = $1 AND deleted_at IS NOT NULL
		ORDER BY position, id`

	rows, err := querier(ctx, r.db).Query(ctx, query, columnID)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived cards: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan card id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *columnRepository) HasActiveChildren(ctx context.Context, id int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM board_columns WHERE parent_id = $1 AND deleted_at IS NULL
		)`

	var has bool
	if err := querier(ctx, r.db).QueryRow(ctx, query, id).Scan(&has); err != nil {
		return false, fmt.Errorf("failed to check child columns: %w", err)
	}
	return has, nil
}

var _ ColumnRepository = (*columnRepository)(nil)

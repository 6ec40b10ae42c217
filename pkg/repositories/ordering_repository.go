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

// ColumnCapacity describes a column's WIP limit against its current
// active card count.
type ColumnCapacity struct {
	Title  string
	Limit  *int
	Active int
}

// OrderingRepository is the store behind the position engine. Every
// method must be called inside a transaction that already holds (or is
// about to take) the scope lock; LockScope is the entry point that
// serializes a sibling set's read-modify-write span.
type OrderingRepository interface {
	// LockScope takes the exclusive row lock serializing ordering
	// operations on a sibling set: the board row (and parent column
	// row, when nested) for column scopes, the column row for card
	// scopes. Missing or soft-deleted scope rows report ErrNotFound.
	LockScope(ctx context.Context, scope models.OrderScope) error

	// Siblings returns every row in the scope, soft-deleted included,
	// in position order.
	Siblings(ctx context.Context, scope models.OrderScope) ([]models.OrderedRow, error)

	// NextPosition returns max(position)+1 over active siblings, or 0
	// for an empty scope.
	NextPosition(ctx context.Context, scope models.OrderScope) (int, error)

	// ShiftPositions adds offset to every sibling's position, active
	// and soft-deleted alike.
	ShiftPositions(ctx context.Context, scope models.OrderScope, offset int) error

	// SetPosition assigns one sibling's position.
	SetPosition(ctx context.Context, scope models.OrderScope, id int64, position int) error

	// Capacity reports the scope's WIP headroom. Only card scopes have
	// capacity; column scopes return a nil limit.
	Capacity(ctx context.Context, scope models.OrderScope) (*ColumnCapacity, error)

	// Relocate moves a card into the scope's column at the given
	// position. Card scopes only.
	Relocate(ctx context.Context, scope models.OrderScope, id int64, position int) error

	// RestoreRow clears a sibling's deletion mark and assigns the given
	// position.
	RestoreRow(ctx context.Context, scope models.OrderScope, id int64, position int) error
}

type orderingRepository struct {
	db *database.DB
}

// NewOrderingRepository creates the pgx-backed ordering store.
func NewOrderingRepository(db *database.DB) OrderingRepository {
	return &orderingRepository{db: db}
}

func (r *orderingRepository) LockScope(ctx context.Context, scope models.OrderScope) error {
	q := querier(ctx, r.db)

	switch scope.Kind {
	case models.OrderColumns:
		var id int64
		err := q.QueryRow(ctx,
			`SELECT id FROM boards WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
			scope.BoardID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to lock board: %w", err)
		}
		if scope.ParentID != nil {
			err = q.QueryRow(ctx,
				`SELECT id FROM board_columns WHERE id = $1 AND board_id = $2 AND deleted_at IS NULL FOR UPDATE`,
				*scope.ParentID, scope.BoardID).Scan(&id)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.ErrNotFound
				}
				return fmt.Errorf("failed to lock parent column: %w", err)
			}
		}
		return nil

	case models.OrderCards:
		var id int64
		err := q.QueryRow(ctx,
			`SELECT id FROM board_columns WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
			scope.ColumnID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to lock column: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown order scope kind %d", scope.Kind)
	}
}

func (r *orderingRepository) Siblings(ctx context.Context, scope models.OrderScope) ([]models.OrderedRow, error) {
	var (
		query string
		args  []any
	)
	switch scope.Kind {
	case models.OrderColumns:
		query = `
			SELECT id, position, deleted_at IS NOT NULL
			FROM board_columns
			WHERE board_id = $1 AND parent_id IS NOT DISTINCT FROM $2
			ORDER BY position, id`
		args = []any{scope.BoardID, scope.ParentID}
	case models.OrderCards:
		query = `
			SELECT id, position, deleted_at IS NOT NULL
			FROM cards
			WHERE column_id = $1
			ORDER BY position, id`
		args = []any{scope.ColumnID}
	default:
		return nil, fmt.Errorf("unknown order scope kind %d", scope.Kind)
	}

	rows, err := querier(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load siblings: %w", err)
	}
	defer rows.Close()

	var siblings []models.OrderedRow
	for rows.Next() {
		var row models.OrderedRow
		if err := rows.Scan(&row.ID, &row.Position, &row.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan sibling: %w", err)
		}
		siblings = append(siblings, row)
	}
	return siblings, rows.Err()
}

func (r *orderingRepository) NextPosition(ctx context.Context, scope models.OrderScope) (int, error) {
	var (
		query string
		args  []any
	)
	switch scope.Kind {
	case models.OrderColumns:
		query = `
			SELECT coalesce(max(position), -1)
			FROM board_columns
			WHERE board_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND deleted_at IS NULL`
		args = []any{scope.BoardID, scope.ParentID}
	case models.OrderCards:
		query = `
			SELECT coalesce(max(position), -1)
			FROM cards
			WHERE column_id = $1 AND deleted_at IS NULL`
		args = []any{scope.ColumnID}
	default:
		return 0, fmt.Errorf("unknown order scope kind %d", scope.Kind)
	}

	var maxPos int
	if err := querier(ctx, r.db).QueryRow(ctx, query, args...).Scan(&maxPos); err != nil {
		return 0, fmt.Errorf("failed to read max position: %w", err)
	}
	return maxPos + 1, nil
}

func (r *orderingRepository) ShiftPositions(ctx context.Context, scope models.OrderScope, offset int) error {
	var (
		query string
		args  []any
	)
	switch scope.Kind {
	case models.OrderColumns:
		query = `
			UPDATE board_columns SET position = position + $3
			WHERE board_id = $1 AND parent_id IS NOT DISTINCT FROM $2`
		args = []any{scope.BoardID, scope.ParentID, offset}
	case models.OrderCards:
		query = `
			UPDATE cards SET position = position + $2
			WHERE column_id = $1`
		args = []any{scope.ColumnID, offset}
	default:
		return fmt.Errorf("unknown order scope kind %d", scope.Kind)
	}

	if _, err := querier(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to shift positions: %w", err)
	}
	return nil
}

func (r *orderingRepository) SetPosition(ctx context.Context, scope models.OrderScope, id int64, position int) error {
	var query string
	switch scope.Kind {
	case models.OrderColumns:
		query = `UPDATE board_columns SET position = $2, updated_at = now() WHERE id = $1`
	case models.OrderCards:
		query = `UPDATE cards SET position = $2, updated_at = now() WHERE id = $1`
	default:
		return fmt.Errorf("unknown order scope kind %d", scope.Kind)
	}

	if _, err := querier(ctx, r.db).Exec(ctx, query, id, position); err != nil {
		return fmt.Errorf("failed to set position: %w", err)
	}
	return nil
}

func (r *orderingRepository) Capacity(ctx context.Context, scope models.OrderScope) (*ColumnCapacity, error) {
	if scope.Kind != models.OrderCards {
		return &ColumnCapacity{}, nil
	}

	query := `
		SELECT c.title, c.wip_limit,
		       (SELECT count(*) FROM cards WHERE column_id = c.id AND deleted_at IS NULL)
		FROM board_columns c
		WHERE c.id = $1`

	var capacity ColumnCapacity
	err := querier(ctx, r.db).QueryRow(ctx, query, scope.ColumnID).Scan(&capacity.Title, &capacity.Limit, &capacity.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read column capacity: %w", err)
	}
	return &capacity, nil
}

func (r *orderingRepository) Relocate(ctx context.Context, scope models.OrderScope, id int64, position int) error {
	if scope.Kind != models.OrderCards {
		return fmt.Errorf("relocate applies to card scopes only")
	}

	query := `
		UPDATE cards SET column_id = $2, position = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, scope.ColumnID, position)
	if err != nil {
		return fmt.Errorf("failed to relocate card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *orderingRepository) RestoreRow(ctx context.Context, scope models.OrderScope, id int64, position int) error {
	var query string
	switch scope.Kind {
	case models.OrderColumns:
		query = `
			UPDATE board_columns SET deleted_at = NULL, deleted_by_id = NULL, position = $2, updated_at = now()
			WHERE id = $1 AND deleted_at IS NOT NULL`
	case models.OrderCards:
		query = `
			UPDATE cards SET deleted_at = NULL, deleted_by_id = NULL, position = $2, updated_at = now()
			WHERE id = $1 AND deleted_at IS NOT NULL`
	default:
		return fmt.Errorf("unknown order scope kind %d", scope.Kind)
	}

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, position)
	if err != nil {
		return fmt.Errorf("failed to restore row: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

var _ OrderingRepository = (*orderingRepository)(nil)

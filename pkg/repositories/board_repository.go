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

// BoardRepository defines the interface for board data access.
type BoardRepository interface {
	Create(ctx context.Context, board *models.Board) error
	GetByPublicID(ctx context.Context, roomID int64, publicID uuid.UUID, includeDeleted bool) (*models.Board, error)
	ListActiveByRoom(ctx context.Context, roomID int64) ([]*models.Board, error)
	NameTaken(ctx context.Context, roomID int64, name string) (bool, error)
	Rename(ctx context.Context, id int64, name string) error
	SoftDelete(ctx context.Context, id, actorID int64) error
	// SoftDeleteContents archives the board's active columns and cards
	// alongside the board itself.
	SoftDeleteContents(ctx context.Context, id, actorID int64) error
	Restore(ctx context.Context, id int64) error
	// ActiveColumnsWithCards loads the board's active columns in
	// position order, each with its active cards in position order.
	ActiveColumnsWithCards(ctx context.Context, boardID int64) ([]*models.ColumnView, error)
	// ArchivedItems lists soft-deleted columns and cards of the board,
	// most recently deleted first.
	ArchivedItems(ctx context.Context, boardID int64) (*models.ArchivedItems, error)
}

type boardRepository struct {
	db *database.DB
}

// NewBoardRepository creates a new board repository.
func NewBoardRepository(db *database.DB) BoardRepository {
	return &boardRepository{db: db}
}

const boardColumns = `id, public_id, room_id, name, created_at, updated_at, deleted_at, deleted_by_id`

func scanBoard(row pgx.Row) (*models.Board, error) {
	var b models.Board
	err := row.Scan(&b.ID, &b.PublicID, &b.RoomID, &b.Name,
		&b.CreatedAt, &b.UpdatedAt, &b.DeletedAt, &b.DeletedByID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan board: %w", err)
	}
	return &b, nil
}

func (r *boardRepository) Create(ctx context.Context, board *models.Board) error {
	if board.PublicID == uuid.Nil {
		board.PublicID = uuid.New()
	}

	query := `
		INSERT INTO boards (public_id, room_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, created_at, updated_at`

	err := querier(ctx, r.db).QueryRow(ctx, query, board.PublicID, board.RoomID, board.Name).
		Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create board: %w", err)
	}
	return nil
}

func (r *boardRepository) GetByPublicID(ctx context.Context, roomID int64, publicID uuid.UUID, includeDeleted bool) (*models.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE room_id = $1 AND public_id = $2`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	return scanBoard(querier(ctx, r.db).QueryRow(ctx, query, roomID, publicID))
}

func (r *boardRepository) ListActiveByRoom(ctx context.Context, roomID int64) ([]*models.Board, error) {
	query := `
		SELECT ` + boardColumns + ` FROM boards
		WHERE room_id = $1 AND deleted_at IS NULL
		ORDER BY created_at`

	rows, err := querier(ctx, r.db).Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	var boards []*models.Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

func (r *boardRepository) NameTaken(ctx context.Context, roomID int64, name string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM boards
			WHERE room_id = $1 AND name = $2 AND deleted_at IS NULL
		)`

	var taken bool
	if err := querier(ctx, r.db).QueryRow(ctx, query, roomID, name).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check board name: %w", err)
	}
	return taken, nil
}

func (r *boardRepository) Rename(ctx context.Context, id int64, name string) error {
	query := `UPDATE boards SET name = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, name)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to rename board: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *boardRepository) SoftDelete(ctx context.Context, id, actorID int64) error {
	query := `
		UPDATE boards SET deleted_at = now(), deleted_by_id = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, actorID)
	if err != nil {
		return fmt.Errorf("failed to soft-delete board: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *boardRepository) SoftDeleteContents(ctx context.Context, id, actorID int64) error {
	q := querier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE cards SET deleted_at = now(), deleted_by_id = $2, updated_at = now()
		WHERE board_id = $1 AND deleted_at IS NULL`, id, actorID)
	if err != nil {
		return fmt.Errorf("failed to archive board cards: %w", err)
	}

	_, err = q.Exec(ctx, `
		UPDATE board_columns SET deleted_at = now(), deleted_by_id = $2, updated_at = now()
		WHERE board_id = $1 AND deleted_at IS NULL`, id, actorID)
	if err != nil {
		return fmt.Errorf("failed to archive board columns: %w", err)
	}
	return nil
}

func (r *boardRepository) Restore(ctx context.Context, id int64) error {
	query := `
		UPDATE boards SET deleted_at = NULL, deleted_by_id = NULL, updated_at = now()
		WHERE id = $1 AND deleted_at IS NOT NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to restore board: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *boardRepository) ActiveColumnsWithCards(ctx context.Context, boardID int64) ([]*models.ColumnView, error) {
	q := querier(ctx, r.db)

	colRows, err := q.Query(ctx, `
		SELECT `+columnColumns+` FROM board_columns
		WHERE board_id = $1 AND deleted_at IS NULL
		ORDER BY parent_id NULLS FIRST, position`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load columns: %w", err)
	}
	defer colRows.Close()

	var views []*models.ColumnView
	byID := make(map[int64]*models.ColumnView)
	for colRows.Next() {
		col, err := scanColumn(colRows)
		if err != nil {
			return nil, err
		}
		view := &models.ColumnView{Column: col, Cards: []*models.Card{}}
		views = append(views, view)
		byID[col.ID] = view
	}
	if err := colRows.Err(); err != nil {
		return nil, err
	}
	colRows.Close()

	cardRows, err := q.Query(ctx, `
		SELECT `+cardColumnList+` FROM cards
		WHERE board_id = $1 AND deleted_at IS NULL
		ORDER BY column_id, position`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	defer cardRows.Close()

	for cardRows.Next() {
		card, err := scanCard(cardRows)
		if err != nil {
			return nil, err
		}
		if view, ok := byID[card.ColumnID]; ok {
			view.Cards = append(view.Cards, card)
		}
	}
	return views, cardRows.Err()
}

func (r *boardRepository) ArchivedItems(ctx context.Context, boardID int64) (*models.ArchivedItems, error) {
	q := querier(ctx, r.db)
	items := &models.ArchivedItems{Columns: []*models.Column{}, Cards: []*models.Card{}}

	colRows, err := q.Query(ctx, `
		SELECT `+columnColumns+` FROM board_columns
		WHERE board_id = $1 AND deleted_at IS NOT NULL
		ORDER BY deleted_at DESC`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived columns: %w", err)
	}
	defer colRows.Close()
	for colRows.Next() {
		col, err := scanColumn(colRows)
		if err != nil {
			return nil, err
		}
		items.Columns = append(items.Columns, col)
	}
	if err := colRows.Err(); err != nil {
		return nil, err
	}
	colRows.Close()

	cardRows, err := q.Query(ctx, `
		SELECT `+cardColumnList+` FROM cards
		WHERE board_id = $1 AND deleted_at IS NOT NULL
		ORDER BY deleted_at DESC`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived cards: %w", err)
	}
	defer cardRows.Close()
	for cardRows.Next() {
		card, err := scanCard(cardRows)
		if err != nil {
			return nil, err
		}
		items.Cards = append(items.Cards, card)
	}
	return items, cardRows.Err()
}

var _ BoardRepository = (*boardRepository)(nil)

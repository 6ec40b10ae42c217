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

// RoomRepository defines the interface for room data access.
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByPublicID(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Room, error)
	Get(ctx context.Context, id int64) (*models.Room, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Room, error)
	Rename(ctx context.Context, id int64, name string) error
	SoftDelete(ctx context.Context, id, actorID int64) error
	Restore(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
	CountActiveBoards(ctx context.Context, id int64) (int, error)
	// PurgeArchived permanently removes the room's soft-deleted boards,
	// columns, cards, and comments. Returns the number of rows removed.
	PurgeArchived(ctx context.Context, id int64) (int64, error)
}

type roomRepository struct {
	db *database.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *database.DB) RoomRepository {
	return &roomRepository{db: db}
}

const roomColumns = `id, public_id, owner_id, name, created_at, updated_at, deleted_at, deleted_by_id`

func scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	err := row.Scan(&room.ID, &room.PublicID, &room.OwnerID, &room.Name,
		&room.CreatedAt, &room.UpdatedAt, &room.DeletedAt, &room.DeletedByID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan room: %w", err)
	}
	return &room, nil
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.PublicID == uuid.Nil {
		room.PublicID = uuid.New()
	}

	query := `
		INSERT INTO rooms (public_id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, created_at, updated_at`

	err := querier(ctx, r.db).QueryRow(ctx, query, room.PublicID, room.OwnerID, room.Name).
		Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *roomRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE public_id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	return scanRoom(querier(ctx, r.db).QueryRow(ctx, query, publicID))
}

func (r *roomRepository) Get(ctx context.Context, id int64) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	return scanRoom(querier(ctx, r.db).QueryRow(ctx, query, id))
}

// ListForUser retrieves the active rooms the user is a member of.
func (r *roomRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Room, error) {
	query := `
		SELECT r.id, r.public_id, r.owner_id, r.name, r.created_at, r.updated_at, r.deleted_at, r.deleted_by_id
		FROM rooms r
		JOIN room_members m ON m.room_id = r.id
		WHERE m.user_id = $1 AND r.deleted_at IS NULL
		ORDER BY r.created_at`

	rows, err := querier(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *roomRepository) Rename(ctx context.Context, id int64, name string) error {
	query := `UPDATE rooms SET name = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, name)
	if err != nil {
		return fmt.Errorf("failed to rename room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *roomRepository) SoftDelete(ctx context.Context, id, actorID int64) error {
	query := `
		UPDATE rooms SET deleted_at = now(), deleted_by_id = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, actorID)
	if err != nil {
		return fmt.Errorf("failed to soft-delete room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *roomRepository) Restore(ctx context.Context, id int64) error {
	query := `
		UPDATE rooms SET deleted_at = NULL, deleted_by_id = NULL, updated_at = now()
		WHERE id = $1 AND deleted_at IS NOT NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to restore room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// HardDelete permanently removes the room. Boards, columns, cards,
// comments, memberships, and invites go with it via ON DELETE CASCADE.
func (r *roomRepository) HardDelete(ctx context.Context, id int64) error {
	tag, err := querier(ctx, r.db).Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to hard-delete room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *roomRepository) CountActiveBoards(ctx context.Context, id int64) (int, error) {
	query := `SELECT count(*) FROM boards WHERE room_id = $1 AND deleted_at IS NULL`

	var count int
	if err := querier(ctx, r.db).QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count boards: %w", err)
	}
	return count, nil
}

func (r *roomRepository) PurgeArchived(ctx context.Context, id int64) (int64, error) {
	q := querier(ctx, r.db)
	var purged int64

	// Children first so counts are accurate; rows whose parent is
	// purged later would be cascade-deleted anyway.
	statements := []string{
		`DELETE FROM comments cm USING cards c, board_columns col, boards b
		 WHERE cm.card_id = c.id AND c.column_id = col.id AND col.board_id = b.id
		   AND b.room_id = $1 AND cm.deleted_at IS NOT NULL`,
		`DELETE FROM cards c USING board_columns col, boards b
		 WHERE c.column_id = col.id AND col.board_id = b.id
		   AND b.room_id = $1 AND c.deleted_at IS NOT NULL`,
		`DELETE FROM board_columns col USING boards b
		 WHERE col.board_id = b.id AND b.room_id = $1 AND col.deleted_at IS NOT NULL`,
		`DELETE FROM boards WHERE room_id = $1 AND deleted_at IS NOT NULL`,
	}
	for _, stmt := range statements {
		tag, err := q.Exec(ctx, stmt, id)
		if err != nil {
			return purged, fmt.Errorf("failed to purge archived rows: %w", err)
		}
		purged += tag.RowsAffected()
	}
	return purged, nil
}

var _ RoomRepository = (*roomRepository)(nil)

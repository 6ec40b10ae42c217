package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/database"
)

// resolverRepository implements authz.Store: it walks ownership chains
// to the owning room and looks up membership roles.
type resolverRepository struct {
	db *database.DB
}

// NewResolverRepository creates the store backing the authorization gate.
func NewResolverRepository(db *database.DB) authz.Store {
	return &resolverRepository{db: db}
}

// Chain-walk queries per resource kind. The active variant filters
// every hop on deleted_at IS NULL; the deleted variant bypasses the
// filter uniformly so restore/purge flows can address archived rows.
const (
	resolveRoomActive = `
		SELECT r.id, r.owner_id, 0
		FROM rooms r
		WHERE r.public_id = $1 AND r.deleted_at IS NULL`
	resolveRoomAny = `
		SELECT r.id, r.owner_id, 0
		FROM rooms r
		WHERE r.public_id = $1`

	resolveBoardActive = `
		SELECT r.id, r.owner_id, 0
		FROM boards b
		JOIN rooms r ON r.id = b.room_id
		WHERE b.public_id = $1
		  AND b.deleted_at IS NULL AND r.deleted_at IS NULL`
	resolveBoardAny = `
		SELECT r.id, r.owner_id, 0
		FROM boards b
		JOIN rooms r ON r.id = b.room_id
		WHERE b.public_id = $1`

	resolveCardActive = `
		SELECT r.id, r.owner_id, c.author_id
		FROM cards c
		JOIN board_columns col ON col.id = c.column_id
		JOIN boards b ON b.id = col.board_id
		JOIN rooms r ON r.id = b.room_id
		WHERE c.public_id = $1
		  AND c.deleted_at IS NULL AND col.deleted_at IS NULL
		  AND b.deleted_at IS NULL AND r.deleted_at IS NULL`
	resolveCardAny = `
		SELECT r.id, r.owner_id, c.author_id
		FROM cards c
		JOIN board_columns col ON col.id = c.column_id
		JOIN boards b ON b.id = col.board_id
		JOIN rooms r ON r.id = b.room_id
		WHERE c.public_id = $1`

	resolveCommentActive = `
		SELECT r.id, r.owner_id, cm.author_id
		FROM comments cm
		JOIN cards c ON c.id = cm.card_id
		JOIN board_columns col ON col.id = c.column_id
		JOIN boards b ON b.id = col.board_id
		JOIN rooms r ON r.id = b.room_id
		WHERE cm.public_id = $1
		  AND cm.deleted_at IS NULL AND c.deleted_at IS NULL
		  AND col.deleted_at IS NULL AND b.deleted_at IS NULL
		  AND r.deleted_at IS NULL`
	resolveCommentAny = `
		SELECT r.id, r.owner_id, cm.author_id
		FROM comments cm
		JOIN cards c ON c.id = cm.card_id
		JOIN board_columns col ON col.id = c.column_id
		JOIN boards b ON b.id = col.board_id
		JOIN rooms r ON r.id = b.room_id
		WHERE cm.public_id = $1`
)

// ResolveRoom resolves the owning room for the referenced resource.
func (r *resolverRepository) ResolveRoom(ctx context.Context, kind authz.ResourceKind, publicID uuid.UUID, includeDeleted bool) (*authz.Resolution, error) {
	var query string
	switch kind {
	case authz.KindRoom:
		query = resolveRoomActive
		if includeDeleted {
			query = resolveRoomAny
		}
	case authz.KindBoard:
		query = resolveBoardActive
		if includeDeleted {
			query = resolveBoardAny
		}
	case authz.KindCard:
		query = resolveCardActive
		if includeDeleted {
			query = resolveCardAny
		}
	case authz.KindComment:
		query = resolveCommentActive
		if includeDeleted {
			query = resolveCommentAny
		}
	default:
		return nil, fmt.Errorf("unknown resource kind %q", kind)
	}

	var res authz.Resolution
	err := querier(ctx, r.db).QueryRow(ctx, query, publicID).Scan(&res.RoomID, &res.OwnerID, &res.AuthorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve %s: %w", kind, err)
	}
	return &res, nil
}

// RoleFor returns the user's role in the room, or RoleNone for
// non-members.
func (r *resolverRepository) RoleFor(ctx context.Context, roomID, userID int64) (authz.Role, error) {
	query := `
		SELECT role FROM room_members
		WHERE room_id = $1 AND user_id = $2`

	var role authz.Role
	err := querier(ctx, r.db).QueryRow(ctx, query, roomID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.RoleNone, nil
		}
		return authz.RoleNone, fmt.Errorf("failed to look up role: %w", err)
	}
	return role, nil
}

var _ authz.Store = (*resolverRepository)(nil)

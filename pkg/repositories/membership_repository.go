package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/database"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
)

// MembershipRepository defines the interface for room membership data access.
type MembershipRepository interface {
	Create(ctx context.Context, roomID, userID int64, role authz.Role) error
	Get(ctx context.Context, roomID, userID int64) (*models.Membership, error)
	GetByUserPublicID(ctx context.Context, roomID int64, userPublicID uuid.UUID) (*models.Membership, error)
	ListByRoom(ctx context.Context, roomID int64) ([]*models.Membership, error)
	UpdateRole(ctx context.Context, roomID, userID int64, role authz.Role) error
	Remove(ctx context.Context, roomID, userID int64) error
}

type membershipRepository struct {
	db *database.DB
}

// NewMembershipRepository creates a new membership repository.
func NewMembershipRepository(db *database.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// Create inserts a membership. At most one membership exists per
// (room, user); a duplicate reports ErrConflict.
func (r *membershipRepository) Create(ctx context.Context, roomID, userID int64, role authz.Role) error {
	query := `
		INSERT INTO room_members (room_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())`

	_, err := querier(ctx, r.db).Exec(ctx, query, roomID, userID, role)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// Get retrieves one membership.
func (r *membershipRepository) Get(ctx context.Context, roomID, userID int64) (*models.Membership, error) {
	query := `
		SELECT id, room_id, user_id, role, created_at, updated_at
		FROM room_members
		WHERE room_id = $1 AND user_id = $2`

	var m models.Membership
	err := querier(ctx, r.db).QueryRow(ctx, query, roomID, userID).Scan(
		&m.ID, &m.RoomID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}

// GetByUserPublicID retrieves a membership by the member's public user
// id, with joined profile fields.
func (r *membershipRepository) GetByUserPublicID(ctx context.Context, roomID int64, userPublicID uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT m.id, m.room_id, m.user_id, m.role, m.created_at, m.updated_at,
		       u.public_id, u.display_name
		FROM room_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1 AND u.public_id = $2`

	var m models.Membership
	err := querier(ctx, r.db).QueryRow(ctx, query, roomID, userPublicID).Scan(
		&m.ID, &m.RoomID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
		&m.UserPublicID, &m.UserDisplayName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}

// ListByRoom retrieves the room's memberships with joined profile
// fields, owner first, then by join time.
func (r *membershipRepository) ListByRoom(ctx context.Context, roomID int64) ([]*models.Membership, error) {
	query := `
		SELECT m.id, m.room_id, m.user_id, m.role, m.created_at, m.updated_at,
		       u.public_id, u.display_name
		FROM room_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY CASE m.role WHEN 'owner' THEN 0 ELSE 1 END, m.created_at`

	rows, err := querier(ctx, r.db).Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var members []*models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(
			&m.ID, &m.RoomID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
			&m.UserPublicID, &m.UserDisplayName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// UpdateRole changes a membership's role.
func (r *membershipRepository) UpdateRole(ctx context.Context, roomID, userID int64, role authz.Role) error {
	query := `
		UPDATE room_members SET role = $3, updated_at = now()
		WHERE room_id = $1 AND user_id = $2`

	tag, err := querier(ctx, r.db).Exec(ctx, query, roomID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Remove deletes a membership row.
func (r *membershipRepository) Remove(ctx context.Context, roomID, userID int64) error {
	query := `DELETE FROM room_members WHERE room_id = $1 AND user_id = $2`

	tag, err := querier(ctx, r.db).Exec(ctx, query, roomID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ MembershipRepository = (*membershipRepository)(nil)

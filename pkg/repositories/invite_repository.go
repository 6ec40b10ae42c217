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

// InviteRepository defines the interface for room invite data access.
type InviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) error
	// GetByCodeForUpdate locks the invite row so concurrent redemptions
	// of the same code serialize on the redemption budget.
	GetByCodeForUpdate(ctx context.Context, code string) (*models.Invite, error)
	ListByRoom(ctx context.Context, roomID int64) ([]*models.Invite, error)
	// RecordRedemption inserts a redemption row; a second redemption by
	// the same user reports ErrConflict.
	RecordRedemption(ctx context.Context, inviteID, userID int64) error
	Revoke(ctx context.Context, roomID int64, publicID uuid.UUID, actorID int64) error
}

type inviteRepository struct {
	db *database.DB
}

// NewInviteRepository creates a new invite repository.
func NewInviteRepository(db *database.DB) InviteRepository {
	return &inviteRepository{db: db}
}

const inviteColumns = `i.id, i.public_id, i.room_id, i.created_by_id, i.code, i.role,
	i.redemption_max, i.expires_at, i.created_at, i.updated_at, i.deleted_at, i.deleted_by_id`

func (r *inviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	if invite.PublicID == uuid.Nil {
		invite.PublicID = uuid.New()
	}

	query := `
		INSERT INTO invites (public_id, room_id, created_by_id, code, role, redemption_max, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING id, created_at, updated_at`

	err := querier(ctx, r.db).QueryRow(ctx, query,
		invite.PublicID, invite.RoomID, invite.CreatedByID, invite.Code,
		invite.Role, invite.RedemptionMax, invite.ExpiresAt).
		Scan(&invite.ID, &invite.CreatedAt, &invite.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *inviteRepository) GetByCodeForUpdate(ctx context.Context, code string) (*models.Invite, error) {
	query := `
		SELECT ` + inviteColumns + `,
		       (SELECT count(*) FROM invite_redemptions ir WHERE ir.invite_id = i.id)
		FROM invites i
		WHERE i.code = $1 AND i.deleted_at IS NULL
		FOR UPDATE OF i`

	var inv models.Invite
	err := querier(ctx, r.db).QueryRow(ctx, query, code).Scan(
		&inv.ID, &inv.PublicID, &inv.RoomID, &inv.CreatedByID, &inv.Code, &inv.Role,
		&inv.RedemptionMax, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.DeletedAt, &inv.DeletedByID, &inv.Redemptions,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return &inv, nil
}

func (r *inviteRepository) ListByRoom(ctx context.Context, roomID int64) ([]*models.Invite, error) {
	query := `
		SELECT ` + inviteColumns + `,
		       (SELECT count(*) FROM invite_redemptions ir WHERE ir.invite_id = i.id)
		FROM invites i
		WHERE i.room_id = $1 AND i.deleted_at IS NULL
		ORDER BY i.created_at DESC`

	rows, err := querier(ctx, r.db).Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		var inv models.Invite
		if err := rows.Scan(
			&inv.ID, &inv.PublicID, &inv.RoomID, &inv.CreatedByID, &inv.Code, &inv.Role,
			&inv.RedemptionMax, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt,
			&inv.DeletedAt, &inv.DeletedByID, &inv.Redemptions,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, &inv)
	}
	return invites, rows.Err()
}

func (r *inviteRepository) RecordRedemption(ctx context.Context, inviteID, userID int64) error {
	query := `
		INSERT INTO invite_redemptions (invite_id, redeemed_by_id, redeemed_at)
		VALUES ($1, $2, now())`

	if _, err := querier(ctx, r.db).Exec(ctx, query, inviteID, userID); err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to record redemption: %w", err)
	}
	return nil
}

func (r *inviteRepository) Revoke(ctx context.Context, roomID int64, publicID uuid.UUID, actorID int64) error {
	query := `
		UPDATE invites SET deleted_at = now(), deleted_by_id = $3, updated_at = now()
		WHERE room_id = $1 AND public_id = $2 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, roomID, publicID, actorID)
	if err != nil {
		return fmt.Errorf("failed to revoke invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

var _ InviteRepository = (*inviteRepository)(nil)

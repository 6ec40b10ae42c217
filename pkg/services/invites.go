package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
	"github.com/roomboard-io/roomboard-engine/pkg/repositories"
)

const maxRedemptions = 1000

// InviteService manages shareable room invites and their redemption.
type InviteService interface {
	Create(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID, role authz.Role, redemptionMax int, expiresAt *time.Time) (*models.Invite, error)
	List(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID) ([]*models.Invite, error)
	Revoke(ctx context.Context, scope *authz.RequestScope, roomID, inviteID uuid.UUID) error
	Redeem(ctx context.Context, scope *authz.RequestScope, code string) (*models.Room, error)
}

type inviteService struct {
	db          TxRunner
	gate        *authz.Gate
	invites     repositories.InviteRepository
	memberships repositories.MembershipRepository
	rooms       repositories.RoomRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewInviteService creates a new invite service.
func NewInviteService(
	db TxRunner,
	gate *authz.Gate,
	invites repositories.InviteRepository,
	memberships repositories.MembershipRepository,
	rooms repositories.RoomRepository,
	logger *zap.Logger,
) InviteService {
	return &inviteService{
		db:          db,
		gate:        gate,
		invites:     invites,
		memberships: memberships,
		rooms:       rooms,
		logger:      logger,
		now:         time.Now,
	}
}

// Create mints a new invite code granting the given role. Invites can
// never grant ownership.
func (s *inviteService) Create(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID, role authz.Role, redemptionMax int, expiresAt *time.Time) (*models.Invite, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermRoomInvite, authz.RoomRef(roomID), authz.Options{})
	if err != nil {
		return nil, err
	}
	if !authz.IsValidRole(role) || role == authz.RoleOwner {
		return nil, apperrors.Validation("role", "role must be one of viewer, member, admin")
	}
	if redemptionMax < 1 || redemptionMax > maxRedemptions {
		return nil, apperrors.Validation("redemption_max", "redemption_max must be between 1 and %d", maxRedemptions)
	}
	if expiresAt != nil && !expiresAt.After(s.now()) {
		return nil, apperrors.Validation("expires_at", "expires_at must be in the future")
	}

	code, err := generateInviteCode()
	if err != nil {
		return nil, err
	}
	actorID := scope.UserID
	invite := &models.Invite{
		PublicID:      uuid.New(),
		RoomID:        authCtx.RoomID,
		CreatedByID:   &actorID,
		Code:          code,
		Role:          role,
		RedemptionMax: redemptionMax,
		ExpiresAt:     expiresAt,
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}

	s.logger.Info("invite created",
		zap.String("room", roomID.String()),
		zap.String("role", string(role)),
		zap.Int("redemption_max", redemptionMax))
	return invite, nil
}

// List returns the room's invites, newest first.
func (s *inviteService) List(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID) ([]*models.Invite, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermRoomInvite, authz.RoomRef(roomID), authz.Options{})
	if err != nil {
		return nil, err
	}
	return s.invites.ListByRoom(ctx, authCtx.RoomID)
}

// Revoke disables an invite. Outstanding redemptions are unaffected.
func (s *inviteService) Revoke(ctx context.Context, scope *authz.RequestScope, roomID, inviteID uuid.UUID) error {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermRoomInvite, authz.RoomRef(roomID), authz.Options{})
	if err != nil {
		return err
	}
	return s.invites.Revoke(ctx, authCtx.RoomID, inviteID, scope.UserID)
}

// Redeem joins the caller to the invite's room at the invite's role.
// Dead codes (unknown, revoked, expired, exhausted) all read as not
// found so probing reveals nothing about why a code stopped working.
// An existing member redeeming again is a conflict; the invite never
// changes a role already held.
func (s *inviteService) Redeem(ctx context.Context, scope *authz.RequestScope, code string) (*models.Room, error) {
	if scope == nil || scope.UserID == 0 {
		return nil, apperrors.ErrNotFound
	}
	if code == "" {
		return nil, apperrors.ErrNotFound
	}

	var room *models.Room
	err := s.db.InTx(ctx, func(ctx context.Context) error {
		invite, err := s.invites.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if invite.IsExpired(s.now()) || invite.IsExhausted() {
			return apperrors.ErrNotFound
		}
		room, err = s.rooms.Get(ctx, invite.RoomID)
		if err != nil {
			return err
		}
		if room.IsDeleted() {
			return apperrors.ErrNotFound
		}

		if _, err := s.memberships.Get(ctx, invite.RoomID, scope.UserID); err == nil {
			return fmt.Errorf("%w: already a member of this room", apperrors.ErrConflict)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		if err := s.invites.RecordRedemption(ctx, invite.ID, scope.UserID); err != nil {
			return err
		}
		return s.memberships.Create(ctx, invite.RoomID, scope.UserID, invite.Role)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invite redeemed",
		zap.String("room", room.PublicID.String()),
		zap.Int64("user_id", scope.UserID))
	return room, nil
}

// generateInviteCode creates a new random 16-byte code (32 hex chars).
func generateInviteCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

var _ InviteService = (*inviteService)(nil)

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
	"github.com/roomboard-io/roomboard-engine/pkg/repositories"
)

// MemberService manages room membership rosters: listing, role
// changes, removal, and voluntary departure.
type MemberService interface {
	List(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID) ([]*models.Membership, error)
	ChangeRole(ctx context.Context, scope *authz.RequestScope, roomID, userID uuid.UUID, role authz.Role) (*models.Membership, error)
	Kick(ctx context.Context, scope *authz.RequestScope, roomID, userID uuid.UUID) error
	Leave(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID) error
}

type memberService struct {
	gate        *authz.Gate
	memberships repositories.MembershipRepository
	logger      *zap.Logger
}

// NewMemberService creates a new member service.
func NewMemberService(gate *authz.Gate, memberships repositories.MembershipRepository, logger *zap.Logger) MemberService {
	return &memberService{gate: gate, memberships: memberships, logger: logger}
}

// List returns the room's members, owner first.
func (s *memberService) List(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID) ([]*models.Membership, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermRoomRead, authz.RoomRef(roomID), authz.Options{})
	if err != nil {
		return nil, err
	}
	return s.memberships.ListByRoom(ctx, authCtx.RoomID)
}

// ChangeRole sets a member's role. The owner's membership is fixed,
// and the owner role cannot be granted; ownership never moves through
// this path.
func (s *memberService) ChangeRole(ctx context.Context, scope *authz.RequestScope, roomID, userID uuid.UUID, role authz.Role) (*models.Membership, error) {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermRoomInvite, authz.RoomRef(roomID), authz.Options{})
	if err != nil {
		return nil, err
	}
	if !authz.IsValidRole(role) || role == authz.RoleOwner {
		return nil, apperrors.Validation("role", "role must be one of viewer, member, admin")
	}

	member, err := s.memberships.GetByUserPublicID(ctx, authCtx.RoomID, userID)
	if err != nil {
		return nil, err
	}
	if member.Role == authz.RoleOwner {
		return nil, apperrors.ErrLastOwner
	}
	if err := s.memberships.UpdateRole(ctx, authCtx.RoomID, member.UserID, role); err != nil {
		return nil, err
	}
	member.Role = role

	s.logger.Info("member role changed",
		zap.String("room", roomID.String()),
		zap.String("member", userID.String()),
		zap.String("role", string(role)))
	return member, nil
}

// Kick removes a member from the room. The owner cannot be removed.
func (s *memberService) Kick(ctx context.Context, scope *authz.RequestScope, roomID, userID uuid.UUID) error {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermRoomKick, authz.RoomRef(roomID), authz.Options{})
	if err != nil {
		return err
	}

	member, err := s.memberships.GetByUserPublicID(ctx, authCtx.RoomID, userID)
	if err != nil {
		return err
	}
	if member.Role == authz.RoleOwner {
		return apperrors.ErrLastOwner
	}
	if member.UserID == scope.UserID {
		return apperrors.Validation("user_id", "use leave to remove yourself")
	}
	if err := s.memberships.Remove(ctx, authCtx.RoomID, member.UserID); err != nil {
		return err
	}

	s.logger.Info("member removed",
		zap.String("room", roomID.String()),
		zap.String("member", userID.String()),
		zap.Int64("actor_id", scope.UserID))
	return nil
}

// Leave removes the caller's own membership. The owner cannot leave;
// the room must be hard-deleted instead.
func (s *memberService) Leave(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID) error {
	authCtx, err := s.gate.Authorize(ctx, scope, authz.PermRoomRead, authz.RoomRef(roomID), authz.Options{})
	if err != nil {
		return err
	}
	if authCtx.Role == authz.RoleOwner {
		return fmt.Errorf("%w: the owner cannot leave the room", apperrors.ErrLastOwner)
	}
	return s.memberships.Remove(ctx, authCtx.RoomID, scope.UserID)
}

var _ MemberService = (*memberService)(nil)

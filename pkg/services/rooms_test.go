package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
)

func TestRoomCreate_WritesOwnerMembership(t *testing.T) {
	tx := &fakeTx{}
	rooms := &mockRoomRepo{
		createFn: func(ctx context.Context, room *models.Room) error {
			room.ID = 1
			return nil
		},
	}
	var gotRole authz.Role
	var gotUser int64
	memberships := &mockMembershipRepo{
		createFn: func(ctx context.Context, roomID, userID int64, role authz.Role) error {
			gotUser = userID
			gotRole = role
			return nil
		},
	}
	svc := NewRoomService(tx, gateFor(42, nil), rooms, memberships, zap.NewNop())

	room, err := svc.Create(context.Background(), authz.NewRequestScope(42), "  Planning  ")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if room.Name != "Planning" {
		t.Errorf("expected trimmed name, got %q", room.Name)
	}
	if room.OwnerID != 42 {
		t.Errorf("expected owner 42, got %d", room.OwnerID)
	}
	if gotUser != 42 || gotRole != authz.RoleOwner {
		t.Errorf("expected owner membership for 42, got user %d role %s", gotUser, gotRole)
	}
	if tx.calls != 1 {
		t.Errorf("room and membership must be written in one transaction, got %d", tx.calls)
	}
}

func TestRoomCreate_RejectsBlankName(t *testing.T) {
	svc := NewRoomService(&fakeTx{}, gateFor(42, nil), &mockRoomRepo{}, &mockMembershipRepo{}, zap.NewNop())

	_, err := svc.Create(context.Background(), authz.NewRequestScope(42), "   ")
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRoomCreate_AnonymousIsNotFound(t *testing.T) {
	svc := NewRoomService(&fakeTx{}, gateFor(42, nil), &mockRoomRepo{}, &mockMembershipRepo{}, zap.NewNop())

	_, err := svc.Create(context.Background(), nil, "Planning")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoomHardDelete_ProtectsActiveBoards(t *testing.T) {
	rooms := &mockRoomRepo{
		getByPublicIDFn: func(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Room, error) {
			return &models.Room{ID: 1, PublicID: publicID, OwnerID: 42}, nil
		},
		countActiveBoardsFn: func(ctx context.Context, id int64) (int, error) {
			return 3, nil
		},
	}
	gate := gateFor(42, map[int64]authz.Role{42: authz.RoleOwner})
	svc := NewRoomService(&fakeTx{}, gate, rooms, &mockMembershipRepo{}, zap.NewNop())

	err := svc.HardDelete(context.Background(), authz.NewRequestScope(42), uuid.New(), false)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected ErrConflict with active boards, got %v", err)
	}
}

func TestRoomHardDelete_ForceBypassesBoardCheck(t *testing.T) {
	deleted := false
	rooms := &mockRoomRepo{
		getByPublicIDFn: func(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Room, error) {
			return &models.Room{ID: 1, PublicID: publicID, OwnerID: 42}, nil
		},
		hardDeleteFn: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}
	gate := gateFor(42, map[int64]authz.Role{42: authz.RoleOwner})
	svc := NewRoomService(&fakeTx{}, gate, rooms, &mockMembershipRepo{}, zap.NewNop())

	if err := svc.HardDelete(context.Background(), authz.NewRequestScope(42), uuid.New(), true); err != nil {
		t.Fatalf("forced HardDelete failed: %v", err)
	}
	if !deleted {
		t.Error("expected the room to be hard-deleted")
	}
}

func TestRoomHardDelete_AdminIsDenied(t *testing.T) {
	// Hard delete is gated on ownership, not role rank.
	gate := gateFor(99, map[int64]authz.Role{42: authz.RoleAdmin})
	svc := NewRoomService(&fakeTx{}, gate, &mockRoomRepo{}, &mockMembershipRepo{}, zap.NewNop())

	err := svc.HardDelete(context.Background(), authz.NewRequestScope(42), uuid.New(), true)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a non-owner admin, got %v", err)
	}
}

func TestRoomPurge_ReturnsRowCount(t *testing.T) {
	rooms := &mockRoomRepo{
		getByPublicIDFn: func(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Room, error) {
			return &models.Room{ID: 1, PublicID: publicID, OwnerID: 42}, nil
		},
		purgeArchivedFn: func(ctx context.Context, id int64) (int64, error) {
			return 17, nil
		},
	}
	gate := gateFor(42, map[int64]authz.Role{42: authz.RoleOwner})
	svc := NewRoomService(&fakeTx{}, gate, rooms, &mockMembershipRepo{}, zap.NewNop())

	purged, err := svc.PurgeArchived(context.Background(), authz.NewRequestScope(42), uuid.New())
	if err != nil {
		t.Fatalf("PurgeArchived failed: %v", err)
	}
	if purged != 17 {
		t.Errorf("expected 17 purged rows, got %d", purged)
	}
}

func TestRoomRestore_RequiresOwner(t *testing.T) {
	gate := gateFor(99, map[int64]authz.Role{42: authz.RoleMember})
	svc := NewRoomService(&fakeTx{}, gate, &mockRoomRepo{}, &mockMembershipRepo{}, zap.NewNop())

	_, err := svc.Restore(context.Background(), authz.NewRequestScope(42), uuid.New())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a non-owner, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
)

func inviteSvc(gate *authz.Gate, invites *mockInviteRepo, memberships *mockMembershipRepo, rooms *mockRoomRepo) *inviteService {
	return NewInviteService(&fakeTx{}, gate, invites, memberships, rooms, zap.NewNop()).(*inviteService)
}

func activeRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{
		getFn: func(ctx context.Context, id int64) (*models.Room, error) {
			return &models.Room{ID: id, PublicID: uuid.New(), Name: "Planning"}, nil
		},
	}
}

func notAMember(ctx context.Context, roomID, userID int64) (*models.Membership, error) {
	return nil, apperrors.ErrNotFound
}

func TestInviteCreate_RejectsOwnerRole(t *testing.T) {
	gate := gateFor(42, map[int64]authz.Role{99: authz.RoleAdmin})
	svc := inviteSvc(gate, &mockInviteRepo{}, &mockMembershipRepo{}, &mockRoomRepo{})

	_, err := svc.Create(context.Background(), authz.NewRequestScope(99), uuid.New(), authz.RoleOwner, 1, nil)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation for owner invite, got %v", err)
	}
}

func TestInviteCreate_GeneratesUniqueCodes(t *testing.T) {
	var codes []string
	invites := &mockInviteRepo{
		createFn: func(ctx context.Context, invite *models.Invite) error {
			codes = append(codes, invite.Code)
			return nil
		},
	}
	gate := gateFor(42, map[int64]authz.Role{99: authz.RoleAdmin})
	svc := inviteSvc(gate, invites, &mockMembershipRepo{}, &mockRoomRepo{})

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), authz.NewRequestScope(99), uuid.New(), authz.RoleMember, 5, nil); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	seen := make(map[string]bool)
	for _, code := range codes {
		if len(code) != 32 {
			t.Errorf("expected 32-char code, got %q", code)
		}
		if seen[code] {
			t.Errorf("duplicate invite code %q", code)
		}
		seen[code] = true
	}
}

func TestInviteCreate_MemberIsDenied(t *testing.T) {
	gate := gateFor(42, map[int64]authz.Role{99: authz.RoleMember})
	svc := inviteSvc(gate, &mockInviteRepo{}, &mockMembershipRepo{}, &mockRoomRepo{})

	_, err := svc.Create(context.Background(), authz.NewRequestScope(99), uuid.New(), authz.RoleMember, 1, nil)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a plain member, got %v", err)
	}
}

func TestRedeem_GrantsInviteRole(t *testing.T) {
	invite := &models.Invite{ID: 5, RoomID: 1, Code: "abc", Role: authz.RoleMember, RedemptionMax: 2, Redemptions: 1}
	invites := &mockInviteRepo{
		getByCodeForUpdateFn: func(ctx context.Context, code string) (*models.Invite, error) {
			return invite, nil
		},
		recordRedemptionFn: func(ctx context.Context, inviteID, userID int64) error {
			return nil
		},
	}
	var grantedRole authz.Role
	memberships := &mockMembershipRepo{
		getFn: notAMember,
		createFn: func(ctx context.Context, roomID, userID int64, role authz.Role) error {
			grantedRole = role
			return nil
		},
	}
	svc := inviteSvc(gateFor(42, nil), invites, memberships, activeRoomRepo())

	room, err := svc.Redeem(context.Background(), authz.NewRequestScope(7), "abc")
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if room == nil {
		t.Fatal("expected the joined room")
	}
	if grantedRole != authz.RoleMember {
		t.Errorf("expected member role granted, got %s", grantedRole)
	}
}

func TestRedeem_DeadCodesReadAsNotFound(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	cases := []struct {
		name   string
		invite *models.Invite
	}{
		{"expired", &models.Invite{ID: 5, RoomID: 1, Role: authz.RoleMember, RedemptionMax: 5, ExpiresAt: timePtr(past)}},
		{"exhausted", &models.Invite{ID: 5, RoomID: 1, Role: authz.RoleMember, RedemptionMax: 2, Redemptions: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			invites := &mockInviteRepo{
				getByCodeForUpdateFn: func(ctx context.Context, code string) (*models.Invite, error) {
					return tc.invite, nil
				},
			}
			svc := inviteSvc(gateFor(42, nil), invites, &mockMembershipRepo{}, activeRoomRepo())

			_, err := svc.Redeem(context.Background(), authz.NewRequestScope(7), "abc")
			if !errors.Is(err, apperrors.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestRedeem_ExistingMemberConflicts(t *testing.T) {
	invites := &mockInviteRepo{
		getByCodeForUpdateFn: func(ctx context.Context, code string) (*models.Invite, error) {
			return &models.Invite{ID: 5, RoomID: 1, Role: authz.RoleAdmin, RedemptionMax: 5}, nil
		},
	}
	memberships := &mockMembershipRepo{
		getFn: func(ctx context.Context, roomID, userID int64) (*models.Membership, error) {
			return &models.Membership{RoomID: roomID, UserID: userID, Role: authz.RoleViewer}, nil
		},
	}
	svc := inviteSvc(gateFor(42, nil), invites, memberships, activeRoomRepo())

	_, err := svc.Redeem(context.Background(), authz.NewRequestScope(7), "abc")
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("an invite must not change a held role, got %v", err)
	}
}

func TestRedeem_DeletedRoomReadsAsNotFound(t *testing.T) {
	invites := &mockInviteRepo{
		getByCodeForUpdateFn: func(ctx context.Context, code string) (*models.Invite, error) {
			return &models.Invite{ID: 5, RoomID: 1, Role: authz.RoleMember, RedemptionMax: 5}, nil
		},
	}
	rooms := &mockRoomRepo{
		getFn: func(ctx context.Context, id int64) (*models.Room, error) {
			return &models.Room{ID: id, DeletedAt: timePtr(time.Now())}, nil
		},
	}
	svc := inviteSvc(gateFor(42, nil), invites, &mockMembershipRepo{}, rooms)

	_, err := svc.Redeem(context.Background(), authz.NewRequestScope(7), "abc")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a deleted room, got %v", err)
	}
}

func TestRedeem_AnonymousIsNotFound(t *testing.T) {
	svc := inviteSvc(gateFor(42, nil), &mockInviteRepo{}, &mockMembershipRepo{}, &mockRoomRepo{})

	_, err := svc.Redeem(context.Background(), nil, "abc")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"

	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
	"github.com/roomboard-io/roomboard-engine/pkg/services"
)

// authedRequest builds a request carrying a logged-in scope, matching
// what the auth middleware attaches.
func authedRequest(method, target string, body io.Reader, userID int64) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := authz.WithScope(req.Context(), authz.NewRequestScope(userID))
	return req.WithContext(ctx)
}

// Configurable service mocks. A nil function field panics when called,
// which makes unexpected calls fail loudly.

type mockRoomService struct {
	createFn     func(ctx context.Context, scope *authz.RequestScope, name string) (*models.Room, error)
	listFn       func(ctx context.Context, scope *authz.RequestScope) ([]*models.Room, error)
	getFn        func(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (*models.Room, error)
	renameFn     func(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID, name string) (*models.Room, error)
	softDeleteFn func(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) error
	restoreFn    func(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (*models.Room, error)
	hardDeleteFn func(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID, force bool) error
	purgeFn      func(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (int64, error)
}

var _ services.RoomService = (*mockRoomService)(nil)

func (m *mockRoomService) Create(ctx context.Context, scope *authz.RequestScope, name string) (*models.Room, error) {
	return m.createFn(ctx, scope, name)
}

func (m *mockRoomService) List(ctx context.Context, scope *authz.RequestScope) ([]*models.Room, error) {
	return m.listFn(ctx, scope)
}

func (m *mockRoomService) Get(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (*models.Room, error) {
	return m.getFn(ctx, scope, publicID)
}

func (m *mockRoomService) Rename(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID, name string) (*models.Room, error) {
	return m.renameFn(ctx, scope, publicID, name)
}

func (m *mockRoomService) SoftDelete(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) error {
	return m.softDeleteFn(ctx, scope, publicID)
}

func (m *mockRoomService) Restore(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (*models.Room, error) {
	return m.restoreFn(ctx, scope, publicID)
}

func (m *mockRoomService) HardDelete(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID, force bool) error {
	return m.hardDeleteFn(ctx, scope, publicID, force)
}

func (m *mockRoomService) PurgeArchived(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (int64, error) {
	return m.purgeFn(ctx, scope, publicID)
}

type mockCardService struct {
	createFn     func(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, title, description string) (*models.Card, error)
	getFn        func(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) (*models.Card, error)
	updateTextFn func(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID, title, description string) (*models.Card, error)
	moveFn       func(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID, destColumnID int64) (*models.Card, error)
	reorderFn    func(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, orderedIDs []int64) error
	softDeleteFn func(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) error
	restoreFn    func(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) (*models.Card, error)
}

var _ services.CardService = (*mockCardService)(nil)

func (m *mockCardService) Create(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, title, description string) (*models.Card, error) {
	return m.createFn(ctx, scope, boardID, columnID, title, description)
}

func (m *mockCardService) Get(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) (*models.Card, error) {
	return m.getFn(ctx, scope, cardID)
}

func (m *mockCardService) UpdateText(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID, title, description string) (*models.Card, error) {
	return m.updateTextFn(ctx, scope, cardID, title, description)
}

func (m *mockCardService) Move(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID, destColumnID int64) (*models.Card, error) {
	return m.moveFn(ctx, scope, cardID, destColumnID)
}

func (m *mockCardService) Reorder(ctx context.Context, scope *authz.RequestScope, boardID uuid.UUID, columnID int64, orderedIDs []int64) error {
	return m.reorderFn(ctx, scope, boardID, columnID, orderedIDs)
}

func (m *mockCardService) SoftDelete(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) error {
	return m.softDeleteFn(ctx, scope, cardID)
}

func (m *mockCardService) Restore(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) (*models.Card, error) {
	return m.restoreFn(ctx, scope, cardID)
}

type mockInviteService struct {
	createFn func(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID, role authz.Role, redemptionMax int, expiresAt *time.Time) (*models.Invite, error)
	listFn   func(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID) ([]*models.Invite, error)
	revokeFn func(ctx context.Context, scope *authz.RequestScope, roomID, inviteID uuid.UUID) error
	redeemFn func(ctx context.Context, scope *authz.RequestScope, code string) (*models.Room, error)
}

var _ services.InviteService = (*mockInviteService)(nil)

func (m *mockInviteService) Create(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID, role authz.Role, redemptionMax int, expiresAt *time.Time) (*models.Invite, error) {
	return m.createFn(ctx, scope, roomID, role, redemptionMax, expiresAt)
}

func (m *mockInviteService) List(ctx context.Context, scope *authz.RequestScope, roomID uuid.UUID) ([]*models.Invite, error) {
	return m.listFn(ctx, scope, roomID)
}

func (m *mockInviteService) Revoke(ctx context.Context, scope *authz.RequestScope, roomID, inviteID uuid.UUID) error {
	return m.revokeFn(ctx, scope, roomID, inviteID)
}

func (m *mockInviteService) Redeem(ctx context.Context, scope *authz.RequestScope, code string) (*models.Room, error) {
	return m.redeemFn(ctx, scope, code)
}

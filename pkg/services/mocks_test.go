package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
	"github.com/roomboard-io/roomboard-engine/pkg/repositories"
)

// fakeTx runs the function directly; there is no real transaction in
// unit tests.
type fakeTx struct {
	calls int
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// stubStore backs the gate with fixed resolutions and roles.
type stubStore struct {
	resolution *authz.Resolution
	resolveErr error
	roles      map[int64]authz.Role
}

func (s *stubStore) ResolveRoom(ctx context.Context, kind authz.ResourceKind, publicID uuid.UUID, includeDeleted bool) (*authz.Resolution, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.resolution, nil
}

func (s *stubStore) RoleFor(ctx context.Context, roomID, userID int64) (authz.Role, error) {
	return s.roles[userID], nil
}

// gateFor builds a gate where every user in roles holds that role in
// room 1, owned by ownerID.
func gateFor(ownerID int64, roles map[int64]authz.Role) *authz.Gate {
	return authz.NewGate(&stubStore{
		resolution: &authz.Resolution{RoomID: 1, OwnerID: ownerID},
		roles:      roles,
	}, zap.NewNop())
}

// Configurable repository mocks. A nil function field panics when
// called, which is exactly what an unexpected call should do in a
// test.

type mockRoomRepo struct {
	createFn            func(ctx context.Context, room *models.Room) error
	getByPublicIDFn     func(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Room, error)
	getFn               func(ctx context.Context, id int64) (*models.Room, error)
	listForUserFn       func(ctx context.Context, userID int64) ([]*models.Room, error)
	renameFn            func(ctx context.Context, id int64, name string) error
	softDeleteFn        func(ctx context.Context, id, actorID int64) error
	restoreFn           func(ctx context.Context, id int64) error
	hardDeleteFn        func(ctx context.Context, id int64) error
	countActiveBoardsFn func(ctx context.Context, id int64) (int, error)
	purgeArchivedFn     func(ctx context.Context, id int64) (int64, error)
}

func (m *mockRoomRepo) Create(ctx context.Context, room *models.Room) error {
	return m.createFn(ctx, room)
}
func (m *mockRoomRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Room, error) {
	return m.getByPublicIDFn(ctx, publicID, includeDeleted)
}
func (m *mockRoomRepo) Get(ctx context.Context, id int64) (*models.Room, error) {
	return m.getFn(ctx, id)
}
func (m *mockRoomRepo) ListForUser(ctx context.Context, userID int64) ([]*models.Room, error) {
	return m.listForUserFn(ctx, userID)
}
func (m *mockRoomRepo) Rename(ctx context.Context, id int64, name string) error {
	return m.renameFn(ctx, id, name)
}
func (m *mockRoomRepo) SoftDelete(ctx context.Context, id, actorID int64) error {
	return m.softDeleteFn(ctx, id, actorID)
}
func (m *mockRoomRepo) Restore(ctx context.Context, id int64) error {
	return m.restoreFn(ctx, id)
}
func (m *mockRoomRepo) HardDelete(ctx context.Context, id int64) error {
	return m.hardDeleteFn(ctx, id)
}
func (m *mockRoomRepo) CountActiveBoards(ctx context.Context, id int64) (int, error) {
	return m.countActiveBoardsFn(ctx, id)
}
func (m *mockRoomRepo) PurgeArchived(ctx context.Context, id int64) (int64, error) {
	return m.purgeArchivedFn(ctx, id)
}

type mockMembershipRepo struct {
	createFn            func(ctx context.Context, roomID, userID int64, role authz.Role) error
	getFn               func(ctx context.Context, roomID, userID int64) (*models.Membership, error)
	getByUserPublicIDFn func(ctx context.Context, roomID int64, userPublicID uuid.UUID) (*models.Membership, error)
	listByRoomFn        func(ctx context.Context, roomID int64) ([]*models.Membership, error)
	updateRoleFn        func(ctx context.Context, roomID, userID int64, role authz.Role) error
	removeFn            func(ctx context.Context, roomID, userID int64) error
}

func (m *mockMembershipRepo) Create(ctx context.Context, roomID, userID int64, role authz.Role) error {
	return m.createFn(ctx, roomID, userID, role)
}
func (m *mockMembershipRepo) Get(ctx context.Context, roomID, userID int64) (*models.Membership, error) {
	return m.getFn(ctx, roomID, userID)
}
func (m *mockMembershipRepo) GetByUserPublicID(ctx context.Context, roomID int64, userPublicID uuid.UUID) (*models.Membership, error) {
	return m.getByUserPublicIDFn(ctx, roomID, userPublicID)
}
func (m *mockMembershipRepo) ListByRoom(ctx context.Context, roomID int64) ([]*models.Membership, error) {
	return m.listByRoomFn(ctx, roomID)
}
func (m *mockMembershipRepo) UpdateRole(ctx context.Context, roomID, userID int64, role authz.Role) error {
	return m.updateRoleFn(ctx, roomID, userID, role)
}
func (m *mockMembershipRepo) Remove(ctx context.Context, roomID, userID int64) error {
	return m.removeFn(ctx, roomID, userID)
}

type mockInviteRepo struct {
	createFn             func(ctx context.Context, invite *models.Invite) error
	getByCodeForUpdateFn func(ctx context.Context, code string) (*models.Invite, error)
	listByRoomFn         func(ctx context.Context, roomID int64) ([]*models.Invite, error)
	recordRedemptionFn   func(ctx context.Context, inviteID, userID int64) error
	revokeFn             func(ctx context.Context, roomID int64, publicID uuid.UUID, actorID int64) error
}

func (m *mockInviteRepo) Create(ctx context.Context, invite *models.Invite) error {
	return m.createFn(ctx, invite)
}
func (m *mockInviteRepo) GetByCodeForUpdate(ctx context.Context, code string) (*models.Invite, error) {
	return m.getByCodeForUpdateFn(ctx, code)
}
func (m *mockInviteRepo) ListByRoom(ctx context.Context, roomID int64) ([]*models.Invite, error) {
	return m.listByRoomFn(ctx, roomID)
}
func (m *mockInviteRepo) RecordRedemption(ctx context.Context, inviteID, userID int64) error {
	return m.recordRedemptionFn(ctx, inviteID, userID)
}
func (m *mockInviteRepo) Revoke(ctx context.Context, roomID int64, publicID uuid.UUID, actorID int64) error {
	return m.revokeFn(ctx, roomID, publicID, actorID)
}

type mockBoardRepo struct {
	createFn                func(ctx context.Context, board *models.Board) error
	getByPublicIDFn         func(ctx context.Context, roomID int64, publicID uuid.UUID, includeDeleted bool) (*models.Board, error)
	listActiveByRoomFn      func(ctx context.Context, roomID int64) ([]*models.Board, error)
	nameTakenFn             func(ctx context.Context, roomID int64, name string) (bool, error)
	renameFn                func(ctx context.Context, id int64, name string) error
	softDeleteFn            func(ctx context.Context, id, actorID int64) error
	softDeleteContentsFn    func(ctx context.Context, id, actorID int64) error
	restoreFn               func(ctx context.Context, id int64) error
	activeColumnsWithCardsFn func(ctx context.Context, boardID int64) ([]*models.ColumnView, error)
	archivedItemsFn         func(ctx context.Context, boardID int64) (*models.ArchivedItems, error)
}

func (m *mockBoardRepo) Create(ctx context.Context, board *models.Board) error {
	return m.createFn(ctx, board)
}
func (m *mockBoardRepo) GetByPublicID(ctx context.Context, roomID int64, publicID uuid.UUID, includeDeleted bool) (*models.Board, error) {
	return m.getByPublicIDFn(ctx, roomID, publicID, includeDeleted)
}
func (m *mockBoardRepo) ListActiveByRoom(ctx context.Context, roomID int64) ([]*models.Board, error) {
	return m.listActiveByRoomFn(ctx, roomID)
}
func (m *mockBoardRepo) NameTaken(ctx context.Context, roomID int64, name string) (bool, error) {
	return m.nameTakenFn(ctx, roomID, name)
}
func (m *mockBoardRepo) Rename(ctx context.Context, id int64, name string) error {
	return m.renameFn(ctx, id, name)
}
func (m *mockBoardRepo) SoftDelete(ctx context.Context, id, actorID int64) error {
	return m.softDeleteFn(ctx, id, actorID)
}
func (m *mockBoardRepo) SoftDeleteContents(ctx context.Context, id, actorID int64) error {
	return m.softDeleteContentsFn(ctx, id, actorID)
}
func (m *mockBoardRepo) Restore(ctx context.Context, id int64) error {
	return m.restoreFn(ctx, id)
}
func (m *mockBoardRepo) ActiveColumnsWithCards(ctx context.Context, boardID int64) ([]*models.ColumnView, error) {
	return m.activeColumnsWithCardsFn(ctx, boardID)
}
func (m *mockBoardRepo) ArchivedItems(ctx context.Context, boardID int64) (*models.ArchivedItems, error) {
	return m.archivedItemsFn(ctx, boardID)
}

type mockColumnRepo struct {
	createFn            func(ctx context.Context, column *models.Column) error
	getFn               func(ctx context.Context, boardID, id int64, includeDeleted bool) (*models.Column, error)
	updateFn            func(ctx context.Context, column *models.Column) error
	softDeleteFn        func(ctx context.Context, id, actorID int64) error
	softDeleteCardsFn   func(ctx context.Context, columnID, actorID int64) error
	restoreFn           func(ctx context.Context, id int64, position int) error
	deletedCardIDsFn    func(ctx context.Context, columnID int64) ([]int64, error)
	hasActiveChildrenFn func(ctx context.Context, id int64) (bool, error)
}

func (m *mockColumnRepo) Create(ctx context.Context, column *models.Column) error {
	return m.createFn(ctx, column)
}
func (m *mockColumnRepo) Get(ctx context.Context, boardID, id int64, includeDeleted bool) (*models.Column, error) {
	return m.getFn(ctx, boardID, id, includeDeleted)
}
func (m *mockColumnRepo) Update(ctx context.Context, column *models.Column) error {
	return m.updateFn(ctx, column)
}
func (m *mockColumnRepo) SoftDelete(ctx context.Context, id, actorID int64) error {
	return m.softDeleteFn(ctx, id, actorID)
}
func (m *mockColumnRepo) SoftDeleteCards(ctx context.Context, columnID, actorID int64) error {
	return m.softDeleteCardsFn(ctx, columnID, actorID)
}
func (m *mockColumnRepo) Restore(ctx context.Context, id int64, position int) error {
	return m.restoreFn(ctx, id, position)
}
func (m *mockColumnRepo) DeletedCardIDs(ctx context.Context, columnID int64) ([]int64, error) {
	return m.deletedCardIDsFn(ctx, columnID)
}
func (m *mockColumnRepo) HasActiveChildren(ctx context.Context, id int64) (bool, error) {
	return m.hasActiveChildrenFn(ctx, id)
}

type mockCardRepo struct {
	createFn        func(ctx context.Context, card *models.Card) error
	getByPublicIDFn func(ctx context.Context, boardID int64, publicID uuid.UUID, includeDeleted bool) (*models.Card, error)
	lookupFn        func(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Card, error)
	updateTextFn    func(ctx context.Context, id int64, title, description string) error
	softDeleteFn    func(ctx context.Context, id, actorID int64) error
	restoreManyFn   func(ctx context.Context, ids []int64) error
	setPositionFn   func(ctx context.Context, id int64, position int) error
}

func (m *mockCardRepo) Create(ctx context.Context, card *models.Card) error {
	return m.createFn(ctx, card)
}
func (m *mockCardRepo) GetByPublicID(ctx context.Context, boardID int64, publicID uuid.UUID, includeDeleted bool) (*models.Card, error) {
	return m.getByPublicIDFn(ctx, boardID, publicID, includeDeleted)
}
func (m *mockCardRepo) Lookup(ctx context.Context, publicID uuid.UUID, includeDeleted bool) (*models.Card, error) {
	return m.lookupFn(ctx, publicID, includeDeleted)
}
func (m *mockCardRepo) UpdateText(ctx context.Context, id int64, title, description string) error {
	return m.updateTextFn(ctx, id, title, description)
}
func (m *mockCardRepo) SoftDelete(ctx context.Context, id, actorID int64) error {
	return m.softDeleteFn(ctx, id, actorID)
}
func (m *mockCardRepo) RestoreMany(ctx context.Context, ids []int64) error {
	return m.restoreManyFn(ctx, ids)
}
func (m *mockCardRepo) SetPosition(ctx context.Context, id int64, position int) error {
	return m.setPositionFn(ctx, id, position)
}

var (
	_ repositories.RoomRepository       = (*mockRoomRepo)(nil)
	_ repositories.MembershipRepository = (*mockMembershipRepo)(nil)
	_ repositories.InviteRepository     = (*mockInviteRepo)(nil)
	_ repositories.BoardRepository      = (*mockBoardRepo)(nil)
	_ repositories.ColumnRepository     = (*mockColumnRepo)(nil)
	_ repositories.CardRepository       = (*mockCardRepo)(nil)
)

func timePtr(t time.Time) *time.Time { return &t }

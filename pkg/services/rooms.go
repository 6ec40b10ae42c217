package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
	"github.com/roomboard-io/roomboard-engine/pkg/repositories"
)

const maxNameLength = 255

// RoomService manages room lifecycle: creation, renaming, archival,
// restore, and permanent deletion.
type RoomService interface {
	Create(ctx context.Context, scope *authz.RequestScope, name string) (*models.Room, error)
	List(ctx context.Context, scope *authz.RequestScope) ([]*models.Room, error)
	Get(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (*models.Room, error)
	Rename(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID, name string) (*models.Room, error)
	SoftDelete(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) error
	Restore(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (*models.Room, error)
	HardDelete(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID, force bool) error
	PurgeArchived(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (int64, error)
}

type roomService struct {
	db          TxRunner
	gate        *authz.Gate
	rooms       repositories.RoomRepository
	memberships repositories.MembershipRepository
	logger      *zap.Logger
}

// NewRoomService creates a new room service.
func NewRoomService(
	db TxRunner,
	gate *authz.Gate,
	rooms repositories.RoomRepository,
	memberships repositories.MembershipRepository,
	logger *zap.Logger,
) RoomService {
	return &roomService{
		db:          db,
		gate:        gate,
		rooms:       rooms,
		memberships: memberships,
		logger:      logger,
	}
}

// Create makes a new room with the caller as its owner. The owner
// membership is written in the same transaction so a room can never
// exist without one.
func (s *roomService) Create(ctx context.Context, scope *authz.RequestScope, name string) (*models.Room, error) {
	if scope == nil || scope.UserID == 0 {
		return nil, apperrors.ErrNotFound
	}
	name, err := validName(name)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		PublicID: uuid.New(),
		OwnerID:  scope.UserID,
		Name:     name,
	}
	err = s.db.InTx(ctx, func(ctx context.Context) error {
		if err := s.rooms.Create(ctx, room); err != nil {
			return err
		}
		return s.memberships.Create(ctx, room.ID, scope.UserID, authz.RoleOwner)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.logger.Info("room created",
		zap.String("room", room.PublicID.String()),
		zap.Int64("owner_id", scope.UserID))
	return room, nil
}

// List returns the active rooms the caller belongs to.
func (s *roomService) List(ctx context.Context, scope *authz.RequestScope) ([]*models.Room, error) {
	if scope == nil || scope.UserID == 0 {
		return nil, apperrors.ErrNotFound
	}
	return s.rooms.ListForUser(ctx, scope.UserID)
}

// Get returns one room the caller can read.
func (s *roomService) Get(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (*models.Room, error) {
	if _, err := s.gate.Authorize(ctx, scope, authz.PermRoomRead, authz.RoomRef(publicID), authz.Options{}); err != nil {
		return nil, err
	}
	return s.rooms.GetByPublicID(ctx, publicID, false)
}

// Rename changes the room's name.
func (s *roomService) Rename(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID, name string) (*models.Room, error) {
	if _, err := s.gate.Authorize(ctx, scope, authz.PermRoomUpdate, authz.RoomRef(publicID), authz.Options{}); err != nil {
		return nil, err
	}
	name, err := validName(name)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.GetByPublicID(ctx, publicID, false)
	if err != nil {
		return nil, err
	}
	if err := s.rooms.Rename(ctx, room.ID, name); err != nil {
		return nil, err
	}
	room.Name = name
	return room, nil
}

// SoftDelete archives the room. Contents stay in place; the resolver
// hides everything beneath a deleted room.
func (s *roomService) SoftDelete(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) error {
	if _, err := s.gate.Authorize(ctx, scope, authz.PermRoomDelete, authz.RoomRef(publicID), authz.Options{}); err != nil {
		return err
	}
	room, err := s.rooms.GetByPublicID(ctx, publicID, false)
	if err != nil {
		return err
	}
	return s.rooms.SoftDelete(ctx, room.ID, scope.UserID)
}

// Restore un-archives a soft-deleted room. Owner only.
func (s *roomService) Restore(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (*models.Room, error) {
	if _, err := s.gate.Authorize(ctx, scope, authz.PermRoomRestore, authz.RoomRef(publicID), authz.Options{AllowDeleted: true}); err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByPublicID(ctx, publicID, true)
	if err != nil {
		return nil, err
	}
	if !room.IsDeleted() {
		return room, nil
	}
	if err := s.rooms.Restore(ctx, room.ID); err != nil {
		return nil, err
	}
	room.DeletedAt = nil
	room.DeletedByID = nil
	return room, nil
}

// HardDelete permanently removes the room and everything under it.
// Owner only. A room that still holds active boards is protected
// unless force is set.
func (s *roomService) HardDelete(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID, force bool) error {
	if _, err := s.gate.Authorize(ctx, scope, authz.PermRoomDeleteHard, authz.RoomRef(publicID), authz.Options{AllowDeleted: true}); err != nil {
		return err
	}
	room, err := s.rooms.GetByPublicID(ctx, publicID, true)
	if err != nil {
		return err
	}
	if !force {
		active, err := s.rooms.CountActiveBoards(ctx, room.ID)
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: room still has %d active boards", apperrors.ErrConflict, active)
		}
	}

	if err := s.rooms.HardDelete(ctx, room.ID); err != nil {
		return err
	}
	s.logger.Info("room hard-deleted",
		zap.String("room", publicID.String()),
		zap.Int64("actor_id", scope.UserID),
		zap.Bool("force", force))
	return nil
}

// PurgeArchived permanently removes every soft-deleted board, column,
// card, and comment in the room. Owner only. Returns the number of
// rows removed.
func (s *roomService) PurgeArchived(ctx context.Context, scope *authz.RequestScope, publicID uuid.UUID) (int64, error) {
	if _, err := s.gate.Authorize(ctx, scope, authz.PermPurge, authz.RoomRef(publicID), authz.Options{}); err != nil {
		return 0, err
	}
	room, err := s.rooms.GetByPublicID(ctx, publicID, false)
	if err != nil {
		return 0, err
	}

	var purged int64
	err = s.db.InTx(ctx, func(ctx context.Context) error {
		var txErr error
		purged, txErr = s.rooms.PurgeArchived(ctx, room.ID)
		return txErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge room: %w", err)
	}

	s.logger.Info("archived content purged",
		zap.String("room", publicID.String()),
		zap.Int64("rows", purged))
	return purged, nil
}

// validName trims and bounds a room or board name.
func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.Validation("name", "name must not be empty")
	}
	if len(name) > maxNameLength {
		return "", apperrors.Validation("name", "name must be at most %d characters", maxNameLength)
	}
	return name, nil
}

var _ RoomService = (*roomService)(nil)

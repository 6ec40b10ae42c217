package authz

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
)

// Options tune a single authorization call.
type Options struct {
	// AllowDeleted resolves the resource chain through soft-deleted
	// rows. Used only by restore and purge flows.
	AllowDeleted bool

	// ExposeForbidden returns ErrForbidden instead of ErrNotFound when
	// the caller is authenticated but is not a member or lacks the
	// permission. By default denials report ErrNotFound so existence
	// is never leaked to callers without access.
	ExposeForbidden bool
}

// AuthContext is the trusted result of a successful authorization.
// Downstream code must consume it as-is and never re-derive room or
// role from caller-supplied input.
type AuthContext struct {
	RoomID int64
	Role   Role
	Flags  Flags
}

// Gate composes resolution, membership lookup, and policy evaluation
// into a single allow/deny decision.
type Gate struct {
	store  Store
	logger *zap.Logger
}

// NewGate creates a gate backed by the given store.
func NewGate(store Store, logger *zap.Logger) *Gate {
	return &Gate{store: store, logger: logger}
}

// Authorize decides whether the scope's principal may exercise the
// permission against the referenced resource. On allow it returns the
// trusted AuthContext; on deny it returns ErrNotFound or, when opted
// in, ErrForbidden. The only side effect is the scope's membership
// memo.
func (g *Gate) Authorize(ctx context.Context, scope *RequestScope, permission Permission, ref ResourceRef, opts Options) (*AuthContext, error) {
	if scope == nil || scope.UserID == 0 {
		return nil, apperrors.ErrNotFound
	}

	res, err := g.store.ResolveRoom(ctx, ref.Kind, ref.PublicID, opts.AllowDeleted)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve %s %s: %w", ref.Kind, ref.PublicID, err)
	}

	role, err := scope.roleFor(ctx, g.store, res.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}
	if role == RoleNone {
		return nil, g.deny(opts)
	}

	flags := Flags{
		IsOwner:  res.OwnerID == scope.UserID,
		IsAuthor: res.AuthorID != 0 && res.AuthorID == scope.UserID,
	}

	if !Evaluate(permission, role, flags) {
		g.logger.Debug("permission denied",
			zap.String("permission", string(permission)),
			zap.String("role", string(role)),
			zap.Int64("room_id", res.RoomID),
			zap.Int64("user_id", scope.UserID))
		return nil, g.deny(opts)
	}

	return &AuthContext{RoomID: res.RoomID, Role: role, Flags: flags}, nil
}

func (g *Gate) deny(opts Options) error {
	if opts.ExposeForbidden {
		return apperrors.ErrForbidden
	}
	return apperrors.ErrNotFound
}

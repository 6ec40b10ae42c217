package authz

import (
	"context"

	"github.com/google/uuid"
)

// ResourceKind identifies which ownership chain a public identifier
// belongs to.
type ResourceKind string

const (
	KindRoom    ResourceKind = "room"
	KindBoard   ResourceKind = "board"
	KindCard    ResourceKind = "card"
	KindComment ResourceKind = "comment"
)

// ResourceRef is an opaque external reference to a resource.
type ResourceRef struct {
	Kind     ResourceKind
	PublicID uuid.UUID
}

// RoomRef builds a reference to a room by its public id.
func RoomRef(publicID uuid.UUID) ResourceRef {
	return ResourceRef{Kind: KindRoom, PublicID: publicID}
}

// BoardRef builds a reference to a board by its public id.
func BoardRef(publicID uuid.UUID) ResourceRef {
	return ResourceRef{Kind: KindBoard, PublicID: publicID}
}

// CardRef builds a reference to a card by its public id.
func CardRef(publicID uuid.UUID) ResourceRef {
	return ResourceRef{Kind: KindCard, PublicID: publicID}
}

// CommentRef builds a reference to a comment by its public id.
func CommentRef(publicID uuid.UUID) ResourceRef {
	return ResourceRef{Kind: KindComment, PublicID: publicID}
}

// Resolution is the result of walking a resource's ownership chain up
// to its room.
type Resolution struct {
	RoomID  int64
	OwnerID int64
	// AuthorID is set only for kinds that carry authorship (cards and
	// comments); zero otherwise.
	AuthorID int64
}

// Store is the persistence capability the gate consumes.
type Store interface {
	// ResolveRoom walks the ownership chain (card -> column -> board ->
	// room, comment -> card -> ...) to the owning room. Every hop is
	// filtered to non-deleted rows unless includeDeleted is set, which
	// bypasses the filter uniformly across all hops. A broken hop
	// yields apperrors.ErrNotFound.
	ResolveRoom(ctx context.Context, kind ResourceKind, publicID uuid.UUID, includeDeleted bool) (*Resolution, error)

	// RoleFor returns the principal's role in the room, or RoleNone
	// when no membership exists.
	RoleFor(ctx context.Context, roomID, userID int64) (Role, error)
}

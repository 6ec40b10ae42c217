package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/roomboard-io/roomboard-engine/pkg/authz"
)

// Room is the top-level workspace container owning boards and
// memberships.
type Room struct {
	ID          int64      `json:"-"`
	PublicID    uuid.UUID  `json:"id"`
	OwnerID     int64      `json:"-"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedByID *int64     `json:"-"`
}

// IsDeleted reports whether the room is soft-deleted.
func (r *Room) IsDeleted() bool { return r.DeletedAt != nil }

// Membership ties a user to a room with a role and join timestamp.
// At most one membership exists per (room, user); the creator's
// membership is always owner and is immutable.
type Membership struct {
	ID        int64      `json:"-"`
	RoomID    int64      `json:"-"`
	UserID    int64      `json:"-"`
	Role      authz.Role `json:"role"`
	CreatedAt time.Time  `json:"joined_at"`
	UpdatedAt time.Time  `json:"-"`

	// Joined profile fields, populated by listing queries.
	UserPublicID    uuid.UUID `json:"user_id"`
	UserDisplayName string    `json:"display_name"`
}

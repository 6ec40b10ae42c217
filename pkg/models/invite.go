package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/roomboard-io/roomboard-engine/pkg/authz"
)

// Invite is a shareable code that joins its redeemer to a room at the
// invite's role. An invite stops working once its redemption budget is
// spent or its expiry passes.
type Invite struct {
	ID            int64      `json:"-"`
	PublicID      uuid.UUID  `json:"id"`
	RoomID        int64      `json:"-"`
	CreatedByID   *int64     `json:"-"`
	Code          string     `json:"code"`
	Role          authz.Role `json:"role"`
	RedemptionMax int        `json:"redemption_max"`
	Redemptions   int        `json:"redemptions"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	DeletedByID   *int64     `json:"-"`
}

// IsExpired reports whether the invite's expiry has passed at now.
func (i *Invite) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// IsExhausted reports whether the redemption budget is spent.
func (i *Invite) IsExhausted() bool {
	return i.Redemptions >= i.RedemptionMax
}

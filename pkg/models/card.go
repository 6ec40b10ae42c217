package models

import (
	"time"

	"github.com/google/uuid"
)

// Card is an individual work item positioned within exactly one
// column. Cards record their author for authorship policy checks.
type Card struct {
	ID          int64      `json:"-"`
	PublicID    uuid.UUID  `json:"id"`
	BoardID     int64      `json:"-"`
	ColumnID    int64      `json:"column_id"`
	AuthorID    int64      `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Position    int        `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedByID *int64     `json:"-"`
}

// IsDeleted reports whether the card is soft-deleted.
func (c *Card) IsDeleted() bool { return c.DeletedAt != nil }

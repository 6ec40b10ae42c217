package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a note on a card. The author id drives the is_author
// policy flag for update and delete.
type Comment struct {
	ID          int64      `json:"-"`
	PublicID    uuid.UUID  `json:"id"`
	CardID      int64      `json:"-"`
	AuthorID    int64      `json:"-"`
	Body        string     `json:"body"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedByID *int64     `json:"-"`

	// Joined author profile, populated by listing queries.
	AuthorPublicID    uuid.UUID `json:"author_id"`
	AuthorDisplayName string    `json:"author_display_name"`
}

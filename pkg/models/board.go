package models

import (
	"time"

	"github.com/google/uuid"
)

// Board is a kanban-style container of columns within a room. Board
// names are unique among the room's active boards.
type Board struct {
	ID          int64      `json:"-"`
	PublicID    uuid.UUID  `json:"id"`
	RoomID      int64      `json:"-"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedByID *int64     `json:"-"`
}

// IsDeleted reports whether the board is soft-deleted.
func (b *Board) IsDeleted() bool { return b.DeletedAt != nil }

// BoardView is a board together with its active columns in position
// order, each carrying its active cards in position order.
type BoardView struct {
	Board   *Board        `json:"board"`
	Columns []*ColumnView `json:"columns"`
}

// ColumnView is a column with its active cards.
type ColumnView struct {
	Column *Column `json:"column"`
	Cards  []*Card `json:"cards"`
}

// ArchivedItems lists a board's soft-deleted columns and cards, most
// recently deleted first.
type ArchivedItems struct {
	Columns []*Column `json:"columns"`
	Cards   []*Card   `json:"cards"`
}

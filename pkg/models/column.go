package models

import "time"

// ColumnTypeStandard is the only column type currently defined.
const ColumnTypeStandard = "standard"

// Column is an ordered lane within a board holding cards. A column may
// nest under a parent column on the same board, and may carry a WIP
// limit capping its active cards.
type Column struct {
	ID          int64      `json:"id"`
	BoardID     int64      `json:"-"`
	ParentID    *int64     `json:"parent_id,omitempty"`
	Title       string     `json:"title"`
	Position    int        `json:"position"`
	WIPLimit    *int       `json:"wip_limit,omitempty"`
	ColumnType  string     `json:"column_type"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedByID *int64     `json:"-"`
}

// IsDeleted reports whether the column is soft-deleted.
func (c *Column) IsDeleted() bool { return c.DeletedAt != nil }

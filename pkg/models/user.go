package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account resolved from an OAuth identity. The (provider,
// subject) pair is the stable external identity; everything else is
// profile data.
type User struct {
	ID          int64     `json:"-"`
	PublicID    uuid.UUID `json:"id"`
	Provider    string    `json:"-"`
	Subject     string    `json:"-"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

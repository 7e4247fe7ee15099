package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	Name           string
	HashedPassword string

	// Hash of the one live refresh token, nil when the user has no
	// active refresh session (logged out or never logged in)
	RefreshTokenHash *string
}

// PublicUser is the client facing projection of a user.
// Password and refresh token hashes never leave the service.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Claims is the identity payload both tokens carry
type Claims struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued by the token manager on login, register and refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

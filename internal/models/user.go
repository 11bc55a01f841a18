package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	PhoneNumber   string     `json:"phone_number"`
	PasswordHash  string     `json:"-"`
	PhoneVerified bool       `json:"phone_verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

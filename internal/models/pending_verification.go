package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel is the delivery channel a verification code is sent over.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelCall  Channel = "call"
	ChannelEmail Channel = "email"
)

// Valid reports whether c is one of the supported channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelSMS, ChannelCall, ChannelEmail:
		return true
	}
	return false
}

// PendingVerification for the pending_verifications table.
// At most one active row per destination; the code itself is never stored,
// only its SHA-256 digest.
type PendingVerification struct {
	ID          uuid.UUID
	Destination string
	CodeHash    string
	Channel     Channel
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Attempts    int
	MaxAttempts int
}

// Expired reports whether the record is past its TTL at the given instant.
func (p *PendingVerification) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

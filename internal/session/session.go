// Package session holds per-user onboarding progress and the store
// abstraction shared by the onboarding flow and the menu gate.
package session

import (
	"context"
	"errors"
	"time"
)

// Stage identifies the current step of the onboarding conversation.
type Stage string

const (
	// StageAwaitingConsent is the initial stage: the user has to
	// acknowledge the privacy documents before anything else.
	StageAwaitingConsent Stage = "awaiting_consent"
	// StageAwaitingName waits for the user's name.
	StageAwaitingName Stage = "awaiting_name"
	// StageAwaitingPhone waits for a shared contact or free-text phone.
	StageAwaitingPhone Stage = "awaiting_phone"
	// StageAwaitingEmail waits for the user's email.
	StageAwaitingEmail Stage = "awaiting_email"
	// StageAwaitingChannelJoin waits for a verified channel membership.
	StageAwaitingChannelJoin Stage = "awaiting_channel_join"
	// StageUnlocked grants access to the menu dispatcher.
	StageUnlocked Stage = "unlocked"
)

// Valid reports whether s is one of the defined stages.
func (s Stage) Valid() bool {
	switch s {
	case StageAwaitingConsent, StageAwaitingName, StageAwaitingPhone,
		StageAwaitingEmail, StageAwaitingChannelJoin, StageUnlocked:
		return true
	}
	return false
}

// Profile accumulates the lead fields collected during onboarding.
// Fields are stored trimmed but otherwise unvalidated.
type Profile struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Session is the per-user onboarding record.
type Session struct {
	UserID    int64     `json:"user_id"`
	Stage     Stage     `json:"stage"`
	Profile   Profile   `json:"profile"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a fresh session parked at the consent stage.
func New(userID int64) *Session {
	return &Session{
		UserID:    userID,
		Stage:     StageAwaitingConsent,
		UpdatedAt: time.Now(),
	}
}

// ErrNotFound is returned by Store.Get when no session exists for a user.
var ErrNotFound = errors.New("session: not found")

// Store persists sessions keyed by user id. Implementations must be safe
// for concurrent use.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, userID int64) error
}

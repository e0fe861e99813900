package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when no live session matches the token
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session exists but has expired
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionRevoked is returned when a session was explicitly revoked
	ErrSessionRevoked = errors.New("session revoked")
)

// Store persists sessions. Implementations must make revocation immediately
// visible: once Revoke returns, no Find may observe the session as live.
type Store interface {
	// Save records a new session with the given lifetime.
	Save(ctx context.Context, sess *Session, ttl time.Duration) error
	// Find returns the session for the token or ErrSessionNotFound.
	// Revoked and expired sessions are still returned while retained,
	// with their state intact; callers decide how to surface them.
	Find(ctx context.Context, token string) (*Session, error)
	// Revoke marks the session terminal. Unknown tokens are not an error.
	Revoke(ctx context.Context, token string) error
	// RevokeOwner revokes every session owned by the email.
	RevokeOwner(ctx context.Context, email string) error
	// Close releases store resources and stops background work.
	Close() error
}

// Package session issues, validates, and revokes opaque session tokens.
// Sessions live in a pluggable Store (Redis in production, in-memory for
// development and tests) with TTL-based expiration.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// tokenBytes is the entropy of a session token (256 bits).
const tokenBytes = 32

// Manager defines the session lifecycle operations.
type Manager interface {
	// Issue creates a session for the email and returns its token.
	Issue(ctx context.Context, email string) (string, error)
	// Validate returns the owning email for a live token. It fails with
	// ErrSessionNotFound, ErrSessionExpired, or ErrSessionRevoked.
	Validate(ctx context.Context, token string) (string, error)
	// Revoke terminates the session. Revoking an unknown or already
	// revoked token is not an error.
	Revoke(ctx context.Context, token string) error
	// RevokeAll terminates every session owned by the email.
	RevokeAll(ctx context.Context, email string) error
	// Close drains the manager and its store.
	Close() error
}

// manager implements Manager over a Store.
type manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a session manager issuing sessions with the given TTL.
func NewManager(store Store, ttl time.Duration) Manager {
	return &manager{store: store, ttl: ttl}
}

func (m *manager) Issue(ctx context.Context, email string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now().UTC()
	sess := &Session{
		Token:     token,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, sess, m.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (m *manager) Validate(ctx context.Context, token string) (string, error) {
	sess, err := m.store.Find(ctx, token)
	if err != nil {
		return "", err
	}
	if sess.Revoked {
		return "", ErrSessionRevoked
	}
	if sess.Expired(time.Now()) {
		// expired entries are garbage; drop eagerly
		_ = m.store.Revoke(ctx, token)
		return "", ErrSessionExpired
	}
	return sess.Email, nil
}

func (m *manager) Revoke(ctx context.Context, token string) error {
	return m.store.Revoke(ctx, token)
}

func (m *manager) RevokeAll(ctx context.Context, email string) error {
	return m.store.RevokeOwner(ctx, email)
}

func (m *manager) Close() error {
	return m.store.Close()
}

// newToken returns a cryptographically random hex token.
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

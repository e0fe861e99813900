// Package password provides one-way password hashing and verification.
//
// Hash records are bcrypt strings: the algorithm tag, cost, and a per-call
// random salt are embedded in the record itself, so two hashes of the same
// plaintext never match while verification stays deterministic.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = bcrypt.DefaultCost

// Hasher hashes and verifies passwords using bcrypt.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost. Costs outside the
// valid bcrypt range fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a bcrypt hash record for the given plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the hash record.
// The underlying comparison is constant-time.
func (h *Hasher) Verify(plaintext, record string) bool {
	return bcrypt.CompareHashAndPassword([]byte(record), []byte(plaintext)) == nil
}

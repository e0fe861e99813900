package users

import (
	"context"
	"errors"
)

var (
	// ErrEmailExists is returned when the email is already registered
	ErrEmailExists = errors.New("email already registered")
	// ErrUserNotFound is returned when no user matches the email
	ErrUserNotFound = errors.New("user not found")
)

// Store persists user records. Implementations must serialize mutations
// per email: concurrent create/update/delete on one email observe a single
// total order, while operations on distinct emails proceed independently.
type Store interface {
	// Create inserts a new user. Fails with ErrEmailExists if the
	// (case-insensitive) email is already present.
	Create(ctx context.Context, user *User) (*User, error)
	// Get returns the user for the email or ErrUserNotFound.
	Get(ctx context.Context, email string) (*User, error)
	// Update applies a partial update and returns the updated user.
	Update(ctx context.Context, email string, update Update) (*User, error)
	// Delete removes the user or returns ErrUserNotFound.
	Delete(ctx context.Context, email string) error
	// List returns all users in insertion order.
	List(ctx context.Context) ([]*User, error)
	// Close releases store resources.
	Close() error
}

package directory

import (
	"errors"
	"fmt"
	"strings"
)

// Failure taxonomy surfaced to callers. Handlers map these to HTTP status
// codes and localized messages.
var (
	// ErrInvalidInput covers malformed email/name/password/plan values
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned for duplicate email registration
	ErrConflict = errors.New("conflict")
	// ErrUnauthenticated covers missing/expired/revoked tokens and bad
	// login credentials
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the caller is authenticated but lacks capability
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the target user does not exist
	ErrNotFound = errors.New("not found")
)

// ValidationError reports per-field violations as catalog message keys
// (e.g. "password.too_short"). Localization happens at the presentation
// layer.
type ValidationError struct {
	// Fields maps a field name to its violated message keys.
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, keys := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(keys, ", ")))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Unwrap ties ValidationError into the taxonomy so errors.Is(err,
// ErrInvalidInput) holds.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Package authz maps an authenticated user to a capability decision.
//
// Two tiers exist: members may act on their own record; admins (elevated
// capability) may act on any record and list all users.
package authz

import (
	"passport/internal/users"
)

// Operation identifies a privileged directory operation.
type Operation string

const (
	OpListUsers  Operation = "list_users"
	OpGetUser    Operation = "get_user"
	OpUpdateUser Operation = "update_user"
	OpDeleteUser Operation = "delete_user"
	OpChangeRole Operation = "change_role"
)

// Actor is the authenticated identity requesting an operation.
type Actor struct {
	Email string
	Role  users.Role
}

// Authorize reports whether the actor may perform op against targetEmail.
// Both emails are expected normalized.
func Authorize(actor Actor, op Operation, targetEmail string) bool {
	if actor.Role == users.RoleAdmin {
		return true
	}

	switch op {
	case OpGetUser, OpUpdateUser, OpDeleteUser:
		return actor.Email == targetEmail
	default:
		// list and role changes need elevated capability
		return false
	}
}

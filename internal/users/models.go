// Package users implements the credential store: user records keyed by a
// normalized email address.
package users

import (
	"strings"
	"time"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree       Plan = "Free"
	PlanPro        Plan = "Pro"
	PlanEnterprise Plan = "Enterprise"
)

// ParsePlan maps a wire value to a Plan. The second return is false for
// unknown values.
func ParsePlan(value string) (Plan, bool) {
	switch strings.ToLower(value) {
	case "free":
		return PlanFree, true
	case "pro":
		return PlanPro, true
	case "enterprise":
		return PlanEnterprise, true
	default:
		return "", false
	}
}

// Role is the capability tier of a user. It is an explicit attribute,
// independent of the subscription plan.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a wire value to a Role.
func ParseRole(value string) (Role, bool) {
	switch strings.ToLower(value) {
	case "member":
		return RoleMember, true
	case "admin":
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Status is the account status.
type Status string

const (
	StatusActive Status = "active"
)

// User is a stored identity. Email is unique and immutable once set.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Plan         Plan      `json:"subscription_plan"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Update is a partial update applied by Store.Update. Nil fields are left
// unchanged. Email and password hash are not mutable through this path.
type Update struct {
	Name *string
	Plan *Plan
	Role *Role
}

// NormalizeEmail lower-cases and trims an email so lookups and uniqueness
// checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

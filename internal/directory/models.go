package directory

import (
	"time"

	"passport/internal/users"
)

// registerRequest is the payload for POST /auth/register.
type registerRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required"`
	Password         string `json:"password" binding:"required"`
	SubscriptionPlan string `json:"subscription_plan"`
}

// loginRequest is the payload for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// updateUserRequest is the payload for PUT /users/:email. Email must match
// the path; it exists in the body only to make immutability explicit.
type updateUserRequest struct {
	Name             *string `json:"name,omitempty"`
	Email            string  `json:"email" binding:"required"`
	SubscriptionPlan *string `json:"subscription_plan,omitempty"`
	Role             *string `json:"role,omitempty"`
}

// userResponse is the sanitized user representation. It never carries the
// password hash.
type userResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	SubscriptionPlan string    `json:"subscription_plan"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// loginResponse is returned on successful login.
type loginResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// apiResponse is the envelope for every JSON body.
type apiResponse struct {
	Message string        `json:"message"`
	Data    any           `json:"data,omitempty"`
	Error   *errorDetails `json:"error,omitempty"`
}

type errorDetails struct {
	Details any `json:"details,omitempty"`
}

func toUserResponse(u *users.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             string(u.Role),
		SubscriptionPlan: string(u.Plan),
		Status:           string(u.Status),
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func toUserResponses(list []*users.User) []userResponse {
	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	return out
}

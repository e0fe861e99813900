// Package directory orchestrates registration, login, and user management,
// composing the credential store, password hasher, session manager, and
// authorization gate.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"passport/internal/authz"
	"passport/internal/events"
	"passport/internal/password"
	"passport/internal/session"
	"passport/internal/users"
)

// dummyHash keeps login timing uniform when the email is unknown: the
// hasher still runs a full bcrypt comparison against this throwaway record.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// RegisterInput carries raw registration values; the service validates and
// normalizes them.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Plan     string
}

// UpdateInput is a partial user update. Nil fields are left unchanged.
type UpdateInput struct {
	Name *string
	Plan *string
	Role *string
}

// Service is the user directory service.
type Service struct {
	store    users.Store
	sessions session.Manager
	hasher   *password.Hasher
	events   events.Publisher
	logger   *slog.Logger

	adminEmails map[string]struct{}
}

// NewService wires the directory service. publisher may be nil when audit
// events are disabled; adminEmails are granted the admin role on
// registration.
func NewService(store users.Store, sessions session.Manager, hasher *password.Hasher,
	publisher events.Publisher, logger *slog.Logger, adminEmails []string) *Service {

	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		admins[users.NormalizeEmail(email)] = struct{}{}
	}
	return &Service{
		store:       store,
		sessions:    sessions,
		hasher:      hasher,
		events:      publisher,
		logger:      logger,
		adminEmails: admins,
	}
}

// Register creates a new user. It fails with ErrInvalidInput (wrapped in a
// ValidationError) on policy violations and ErrConflict on duplicate email.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*users.User, error) {
	email := users.NormalizeEmail(input.Email)

	fields := map[string][]string{}
	if keys := validateName(input.Name); len(keys) > 0 {
		fields["name"] = keys
	}
	if keys := validateEmail(email); len(keys) > 0 {
		fields["email"] = keys
	}
	if keys := validatePassword(input.Password); len(keys) > 0 {
		fields["password"] = keys
	}

	plan := users.PlanFree
	if input.Plan != "" {
		parsed, ok := users.ParsePlan(input.Plan)
		if !ok {
			fields["subscription_plan"] = []string{"plan.unknown"}
		} else {
			plan = parsed
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := users.RoleMember
	if _, ok := s.adminEmails[email]; ok {
		role = users.RoleAdmin
	}

	now := time.Now().UTC()
	user := &users.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         input.Name,
		PasswordHash: hash,
		Role:         role,
		Plan:         plan,
		Status:       users.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.store.Create(ctx, user)
	if err != nil {
		if errors.Is(err, users.ErrEmailExists) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "email", created.Email, "role", created.Role)
	s.publish(events.TypeUserRegistered, created.Email, created.Email)
	return created, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password produce the identical ErrUnauthenticated so accounts
// cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*users.User, string, error) {
	email = users.NormalizeEmail(email)

	user, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			// burn the same hashing cost as the found path
			s.hasher.Verify(plaintext, dummyHash)
			return nil, "", ErrUnauthenticated
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		return nil, "", ErrUnauthenticated
	}

	token, err := s.sessions.Issue(ctx, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}

	s.logger.Info("user logged in", "email", user.Email)
	s.publish(events.TypeUserLoggedIn, user.Email, user.Email)
	return user, token, nil
}

// Logout revokes the session. Unknown or already revoked tokens are treated
// as already logged out.
func (s *Service) Logout(ctx context.Context, token string) error {
	email, validateErr := s.sessions.Validate(ctx, token)
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if validateErr == nil {
		s.logger.Info("user logged out", "email", email)
		s.publish(events.TypeUserLoggedOut, email, email)
	}
	return nil
}

// ListUsers returns all users; requires elevated capability.
func (s *Service) ListUsers(ctx context.Context, token string) ([]*users.User, error) {
	actor, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !authz.Authorize(actor, authz.OpListUsers, "") {
		return nil, ErrForbidden
	}
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return list, nil
}

// GetUser returns the target user; self or elevated capability.
func (s *Service) GetUser(ctx context.Context, token, targetEmail string) (*users.User, error) {
	actor, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	targetEmail = users.NormalizeEmail(targetEmail)
	if !authz.Authorize(actor, authz.OpGetUser, targetEmail) {
		return nil, ErrForbidden
	}

	user, err := s.store.Get(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// UpdateUser applies a partial update to the target user; self or elevated
// capability. Changing roles requires elevated capability regardless of
// target.
func (s *Service) UpdateUser(ctx context.Context, token, targetEmail string, input UpdateInput) (*users.User, error) {
	actor, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	targetEmail = users.NormalizeEmail(targetEmail)
	if !authz.Authorize(actor, authz.OpUpdateUser, targetEmail) {
		return nil, ErrForbidden
	}
	if input.Role != nil && !authz.Authorize(actor, authz.OpChangeRole, targetEmail) {
		return nil, ErrForbidden
	}

	fields := map[string][]string{}
	update := users.Update{}
	if input.Name != nil {
		if keys := validateName(*input.Name); len(keys) > 0 {
			fields["name"] = keys
		}
		update.Name = input.Name
	}
	if input.Plan != nil {
		plan, ok := users.ParsePlan(*input.Plan)
		if !ok {
			fields["subscription_plan"] = []string{"plan.unknown"}
		}
		update.Plan = &plan
	}
	if input.Role != nil {
		role, ok := users.ParseRole(*input.Role)
		if !ok {
			fields["role"] = []string{"role.unknown"}
		}
		update.Role = &role
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	updated, err := s.store.Update(ctx, targetEmail, update)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user updated", "email", updated.Email, "actor", actor.Email)
	s.publish(events.TypeUserUpdated, updated.Email, actor.Email)
	return updated, nil
}

// DeleteUser removes the target user and cascade-revokes every session it
// owns; self or elevated capability.
func (s *Service) DeleteUser(ctx context.Context, token, targetEmail string) error {
	actor, err := s.authenticate(ctx, token)
	if err != nil {
		return err
	}
	targetEmail = users.NormalizeEmail(targetEmail)
	if !authz.Authorize(actor, authz.OpDeleteUser, targetEmail) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, targetEmail); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := s.sessions.RevokeAll(ctx, targetEmail); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.logger.Info("user deleted", "email", targetEmail, "actor", actor.Email)
	s.publish(events.TypeUserDeleted, targetEmail, actor.Email)
	return nil
}

// authenticate resolves a token to its owning user. Any session failure, or
// a session whose owner no longer exists, surfaces as ErrUnauthenticated.
func (s *Service) authenticate(ctx context.Context, token string) (authz.Actor, error) {
	if token == "" {
		return authz.Actor{}, ErrUnauthenticated
	}
	email, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return authz.Actor{}, ErrUnauthenticated
	}

	user, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return authz.Actor{}, ErrUnauthenticated
		}
		return authz.Actor{}, fmt.Errorf("failed to load actor: %w", err)
	}
	return authz.Actor{Email: user.Email, Role: user.Role}, nil
}

func (s *Service) publish(eventType, email, actorEmail string) {
	if s.events == nil {
		return
	}
	s.events.Publish(events.New(eventType, email, actorEmail))
}

// Package events publishes authentication audit events to Kafka.
// Publishing is best-effort and optional; the directory service works
// without a configured broker.
package events

import "time"

// Event types emitted by the directory service.
const (
	TypeUserRegistered = "user.registered"
	TypeUserLoggedIn   = "user.logged_in"
	TypeUserLoggedOut  = "user.logged_out"
	TypeUserUpdated    = "user.updated"
	TypeUserDeleted    = "user.deleted"
)

// Event is an audit record of an authentication or user-management action.
// It never carries credentials or tokens.
type Event struct {
	Type       string    `json:"type"`
	Email      string    `json:"email"`
	ActorEmail string    `json:"actor_email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers audit events. Implementations must not block request
// handling on broker availability.
type Publisher interface {
	Publish(event Event)
	Close()
}

// New builds an audit event with the current timestamp.
func New(eventType, email, actorEmail string) Event {
	return Event{
		Type:       eventType,
		Email:      email,
		ActorEmail: actorEmail,
		OccurredAt: time.Now().UTC(),
	}
}

// Package notification carries the fan-out events other contexts emit when
// user-visible state changes. Consumers live outside this module; here we
// only define the event shapes and the publishers that ship them.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAvatarChanged   EventType = "user.avatar_changed"
	EventUsernameChanged EventType = "user.username_changed"
	EventUserBanned      EventType = "user.banned"
	EventUserUnbanned    EventType = "user.unbanned"
)

// Event is the envelope published for every notification. Payload carries the
// event-specific fields, already flattened for consumers.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       EventType         `json:"type"`
	UserID     uuid.UUID         `json:"user_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Payload    map[string]string `json:"payload,omitempty"`
}

// NewEvent stamps a fresh envelope for the given subject.
func NewEvent(eventType EventType, userID uuid.UUID, payload map[string]string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher ships events to whatever transport the deployment uses. Publish
// failures are logged and swallowed by callers; notifications are best-effort
// and never veto the domain operation that produced them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Package events defines the domain-event publishing capability consumed by
// the unit of work, plus the wire envelope shared by all transports.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/orderdesk-backend/internal/domain"
)

// Publisher delivers domain events to interested handlers. Implementations
// may be an in-process bus, a broker, or an external queue; the unit of work
// only needs Publish.
type Publisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

// Envelope is the wire form of a published domain event.
type Envelope struct {
	EventID    uuid.UUID       `json:"event_id"`
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope wraps a domain event for transport. The payload is the event's
// JSON form.
func NewEnvelope(e domain.Event) (Envelope, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.New(),
		Name:       e.EventName(),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}, nil
}

// Package domain holds types shared by all business aggregates.
package domain

// Event is an immutable record of something that happened to an aggregate.
// Implementations are plain value types; the payload is whatever the event
// struct marshals to.
type Event interface {
	EventName() string
}

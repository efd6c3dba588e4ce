package uow

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/orderdesk-backend/internal/domain"
)

// Identifiable exposes a uuid identity. Whether the pipeline assigns ids
// client-side is decided per entity type at registration (EntityRegistry);
// unregistered or database-generated identities are left untouched.
type Identifiable interface {
	IdentityID() uuid.UUID
	AssignIdentityID(uuid.UUID)
}

// ConcurrencyStamped exposes an opaque optimistic-concurrency token.
type ConcurrencyStamped interface {
	ConcurrencyToken() string
	SetConcurrencyToken(string)
}

// CreationAudited receives creation audit stamps on insert.
type CreationAudited interface {
	StampCreated(at time.Time, by string)
}

// ModificationAudited receives modification audit stamps on every update.
type ModificationAudited interface {
	StampModified(at time.Time, by string)
}

// SoftDeletable vetoes physical deletion. Getter/setter pairs are exposed
// separately so the set-once rules for deletion audit fields live in the
// interceptor, not in the entity.
type SoftDeletable interface {
	SoftDeleted() bool
	MarkSoftDeleted()
	DeletionTime() *time.Time
	SetDeletionTime(time.Time)
	DeleterID() string
	SetDeleterID(string)
}

// EventSource marks an aggregate root owning a queue of pending domain
// events. The unit of work drains the queue exactly once per save.
type EventSource interface {
	PendingEvents() []domain.Event
	ClearPendingEvents()
}

// capabilities is the probe result for one entity instance. Probing is
// side-effect free; absent capabilities are nil.
type capabilities struct {
	identity   Identifiable
	stamp      ConcurrencyStamped
	created    CreationAudited
	modified   ModificationAudited
	softDelete SoftDeletable
	events     EventSource
}

func probe(entity any) capabilities {
	var c capabilities
	if entity == nil {
		return c
	}
	if v, ok := entity.(Identifiable); ok {
		c.identity = v
	}
	if v, ok := entity.(ConcurrencyStamped); ok {
		c.stamp = v
	}
	if v, ok := entity.(CreationAudited); ok {
		c.created = v
	}
	if v, ok := entity.(ModificationAudited); ok {
		c.modified = v
	}
	if v, ok := entity.(SoftDeletable); ok {
		c.softDelete = v
	}
	if v, ok := entity.(EventSource); ok {
		c.events = v
	}
	return c
}

// Package model provides embeddable persistence mixins. Each mixin implements
// one of the unit-of-work capability interfaces; entities opt in by embedding
// whichever mixins apply to them. There is no required base entity type.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/orderdesk-backend/internal/domain"
)

// Model carries a uuid primary key.
type Model struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
}

func (m *Model) IdentityID() uuid.UUID { return m.ID }

func (m *Model) AssignIdentityID(id uuid.UUID) { m.ID = id }

// ConcurrencyLock carries an opaque token used to detect conflicting
// concurrent updates at commit time. The token is assigned once on insert and
// never regenerated by the persistence pipeline.
type ConcurrencyLock struct {
	ConcurrencyStamp string `gorm:"column:concurrency_stamp;size:64;index" json:"concurrency_stamp,omitempty"`
}

func (l *ConcurrencyLock) ConcurrencyToken() string { return l.ConcurrencyStamp }

func (l *ConcurrencyLock) SetConcurrencyToken(token string) { l.ConcurrencyStamp = token }

// CreationAudit records who created a row and when.
type CreationAudit struct {
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	CreatedBy string    `gorm:"size:64;index" json:"created_by,omitempty"`
}

func (a *CreationAudit) StampCreated(at time.Time, by string) {
	a.CreatedAt = at
	a.CreatedBy = by
}

// ModificationAudit records the most recent update. Overwritten on every
// modification.
type ModificationAudit struct {
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
	UpdatedBy string    `gorm:"size:64" json:"updated_by,omitempty"`
}

func (a *ModificationAudit) StampModified(at time.Time, by string) {
	a.UpdatedAt = at
	a.UpdatedBy = by
}

// SoftDeleteAudit marks a row as logically deleted instead of physically
// removed. DeletedAt is a plain pointer rather than gorm.DeletedAt so that the
// unit-of-work pipeline, not the ORM, owns soft-delete semantics.
type SoftDeleteAudit struct {
	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy string     `gorm:"size:64" json:"deleted_by,omitempty"`
}

func (a *SoftDeleteAudit) SoftDeleted() bool { return a.IsDeleted }

func (a *SoftDeleteAudit) MarkSoftDeleted() { a.IsDeleted = true }

func (a *SoftDeleteAudit) DeletionTime() *time.Time { return a.DeletedAt }

func (a *SoftDeleteAudit) SetDeletionTime(at time.Time) { a.DeletedAt = &at }

func (a *SoftDeleteAudit) DeleterID() string { return a.DeletedBy }

func (a *SoftDeleteAudit) SetDeleterID(by string) { a.DeletedBy = by }

// AggregateBase gives an entity an in-memory queue of pending domain events.
// The queue is drained exactly once per save by the unit of work; it is never
// persisted.
type AggregateBase struct {
	pending []domain.Event
}

// Raise queues a domain event for publication on the next save.
func (b *AggregateBase) Raise(e domain.Event) {
	if e == nil {
		return
	}
	b.pending = append(b.pending, e)
}

func (b *AggregateBase) PendingEvents() []domain.Event { return b.pending }

func (b *AggregateBase) ClearPendingEvents() { b.pending = nil }

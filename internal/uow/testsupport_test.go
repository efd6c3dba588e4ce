package uow

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/orderdesk-backend/internal/data/db"
	"github.com/yungbote/orderdesk-backend/internal/domain"
	"github.com/yungbote/orderdesk-backend/internal/domain/model"
)

// auditedEntity opts into every capability.
type auditedEntity struct {
	model.Model
	model.ConcurrencyLock
	model.CreationAudit
	model.ModificationAudit
	model.SoftDeleteAudit
	model.AggregateBase

	Name string `gorm:"size:64"`
}

// noteEntity carries identity and creation audit only. Used by handler
// staging tests.
type noteEntity struct {
	model.Model
	model.CreationAudit

	Body string `gorm:"size:128"`
}

// bareEntity exposes no capabilities at all.
type bareEntity struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"size:64"`
}

type testEvent struct {
	Tag string `json:"tag"`
}

func (e testEvent) EventName() string { return "test.event" }

type spyPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	fn     func(ctx context.Context, e domain.Event) error
}

func (p *spyPublisher) Publish(ctx context.Context, e domain.Event) error {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
	if p.fn != nil {
		return p.fn(ctx, e)
	}
	return nil
}

func (p *spyPublisher) published() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Event(nil), p.events...)
}

func newTestRegistry(t *testing.T) *EntityRegistry {
	t.Helper()
	registry := NewEntityRegistry()
	if err := registry.Register(&auditedEntity{}, WithClientIDs()); err != nil {
		t.Fatalf("register auditedEntity: %v", err)
	}
	if err := registry.Register(&noteEntity{}, WithClientIDs()); err != nil {
		t.Fatalf("register noteEntity: %v", err)
	}
	if err := registry.Register(&bareEntity{}); err != nil {
		t.Fatalf("register bareEntity: %v", err)
	}
	return registry
}

func newTestDB(t *testing.T, registry *EntityRegistry) *gorm.DB {
	t.Helper()
	gdb, err := db.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := registry.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func newTestUow(t *testing.T, gdb *gorm.DB, registry *EntityRegistry, publisher EventPublisher) *UnitOfWork {
	t.Helper()
	u, err := New(Deps{
		DB:        gdb,
		Registry:  registry,
		Publisher: publisher,
	})
	if err != nil {
		t.Fatalf("new unit of work: %v", err)
	}
	return u
}

package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/orderdesk-backend/internal/domain"
	"github.com/yungbote/orderdesk-backend/internal/platform/actorctx"
)

func actorContext(id string) context.Context {
	return actorctx.WithActor(context.Background(), actorctx.Actor{ID: id})
}

func TestSaveAddedAppliesConceptsAndPublishes(t *testing.T) {
	registry := newTestRegistry(t)
	gdb := newTestDB(t, registry)
	pub := &spyPublisher{}
	u := newTestUow(t, gdb, registry, pub)

	e := &auditedEntity{Name: "first"}
	e.Raise(testEvent{Tag: "created"})
	u.RegisterNew(e)

	affected, err := u.SaveContext(actorContext("u1"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected record, got %d", affected)
	}
	if e.ID == uuid.Nil {
		t.Fatalf("expected assigned identity")
	}
	if e.ConcurrencyStamp == "" {
		t.Fatalf("expected concurrency token")
	}
	if e.CreatedBy != "u1" {
		t.Fatalf("expected creation audit for u1, got %q", e.CreatedBy)
	}
	published := pub.published()
	if len(published) != 1 || published[0].(testEvent).Tag != "created" {
		t.Fatalf("expected exactly the raised event, got %v", published)
	}
	if len(e.PendingEvents()) != 0 {
		t.Fatalf("queue must be empty after save")
	}

	var count int64
	gdb.Model(&auditedEntity{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestSaveModifiedRotatesStampAndDetectsConflict(t *testing.T) {
	registry := newTestRegistry(t)
	gdb := newTestDB(t, registry)
	pub := &spyPublisher{}

	seed := &auditedEntity{Name: "seed"}
	u := newTestUow(t, gdb, registry, pub)
	u.RegisterNew(seed)
	if _, err := u.SaveContext(actorContext("u1")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var first, second auditedEntity
	if err := gdb.First(&first, "id = ?", seed.ID).Error; err != nil {
		t.Fatalf("load first: %v", err)
	}
	if err := gdb.First(&second, "id = ?", seed.ID).Error; err != nil {
		t.Fatalf("load second: %v", err)
	}

	first.Name = "updated-by-first"
	u1 := newTestUow(t, gdb, registry, pub)
	u1.RegisterDirty(&first)
	if _, err := u1.SaveContext(actorContext("u1")); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if first.UpdatedBy != "u1" {
		t.Fatalf("expected modification audit, got %q", first.UpdatedBy)
	}

	// The second copy still carries the stale token.
	second.Name = "updated-by-second"
	u2 := newTestUow(t, gdb, registry, pub)
	u2.RegisterDirty(&second)
	_, err := u2.SaveContext(actorContext("u2"))
	if !IsConflict(err) {
		t.Fatalf("expected concurrency conflict, got %v", err)
	}
	var uowErr *Error
	if !errors.As(err, &uowErr) || uowErr.Cause == nil {
		t.Fatalf("conflict must preserve its cause, got %#v", err)
	}

	var row auditedEntity
	if err := gdb.First(&row, "id = ?", seed.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.Name != "updated-by-first" {
		t.Fatalf("losing save must not be applied, got %q", row.Name)
	}
}

func TestSaveDeletedSoftDeletes(t *testing.T) {
	registry := newTestRegistry(t)
	gdb := newTestDB(t, registry)
	pub := &spyPublisher{}

	e := &auditedEntity{Name: "victim"}
	u := newTestUow(t, gdb, registry, pub)
	u.RegisterNew(e)
	if _, err := u.SaveContext(actorContext("u1")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var loaded auditedEntity
	if err := gdb.First(&loaded, "id = ?", e.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	u2 := newTestUow(t, gdb, registry, pub)
	u2.RegisterRemoved(&loaded)
	if _, err := u2.SaveContext(actorContext("deleter")); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var row auditedEntity
	if err := gdb.First(&row, "id = ?", e.ID).Error; err != nil {
		t.Fatalf("row must still exist: %v", err)
	}
	if !row.IsDeleted || row.DeletedAt == nil || row.DeletedBy != "deleter" {
		t.Fatalf("expected soft-deleted row, got %+v", row)
	}
	firstDeletedAt := *row.DeletedAt

	// Repeated soft delete keeps the first deletion's audit.
	var again auditedEntity
	if err := gdb.First(&again, "id = ?", e.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	u3 := newTestUow(t, gdb, registry, pub)
	u3.RegisterRemoved(&again)
	if _, err := u3.SaveContext(actorContext("someone-else")); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := gdb.First(&row, "id = ?", e.ID).Error; err != nil {
		t.Fatalf("final reload: %v", err)
	}
	if !row.DeletedAt.Equal(firstDeletedAt) || row.DeletedBy != "deleter" {
		t.Fatalf("deletion audit must be idempotent, got %v %q", row.DeletedAt, row.DeletedBy)
	}
}

func TestSaveDeletedPhysicalWithoutCapability(t *testing.T) {
	registry := newTestRegistry(t)
	gdb := newTestDB(t, registry)
	u := newTestUow(t, gdb, registry, &spyPublisher{})

	e := &bareEntity{ID: uuid.New(), Name: "ephemeral"}
	u.RegisterNew(e)
	if _, err := u.SaveContext(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	u2 := newTestUow(t, gdb, registry, &spyPublisher{})
	u2.RegisterRemoved(e)
	if _, err := u2.SaveContext(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int64
	gdb.Model(&bareEntity{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected physical deletion, got %d rows", count)
	}
}

func TestSavePublishFailureLeavesStoreUntouched(t *testing.T) {
	registry := newTestRegistry(t)
	gdb := newTestDB(t, registry)
	handlerErr := errors.New("downstream unavailable")
	pub := &spyPublisher{fn: func(ctx context.Context, e domain.Event) error {
		return handlerErr
	}}
	u := newTestUow(t, gdb, registry, pub)

	e := &auditedEntity{Name: "never-persisted"}
	e.Raise(testEvent{Tag: "x"})
	u.RegisterNew(e)

	_, err := u.SaveContext(actorContext("u1"))
	if err == nil {
		t.Fatalf("expected save failure")
	}
	// Handler failures surface unmodified, not wrapped.
	if !errors.Is(err, handlerErr) || CodeOf(err) != "" {
		t.Fatalf("expected original handler error, got %v", err)
	}

	var count int64
	gdb.Model(&auditedEntity{}).Count(&count)
	if count != 0 {
		t.Fatalf("no partial writes allowed, got %d rows", count)
	}
}

func TestSaveHandlerStagesThroughSameUnitOfWork(t *testing.T) {
	registry := newTestRegistry(t)
	gdb := newTestDB(t, registry)

	var u *UnitOfWork
	pub := &spyPublisher{fn: func(ctx context.Context, e domain.Event) error {
		u.RegisterNew(&noteEntity{Body: "reacted to " + e.EventName()})
		return nil
	}}
	u = newTestUow(t, gdb, registry, pub)

	e := &auditedEntity{Name: "root"}
	e.Raise(testEvent{Tag: "trigger"})
	u.RegisterNew(e)

	affected, err := u.SaveContext(actorContext("u1"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if affected != 2 {
		t.Fatalf("handler-staged change must join the commit, affected=%d", affected)
	}

	var note noteEntity
	if err := gdb.First(&note).Error; err != nil {
		t.Fatalf("expected note row: %v", err)
	}
	if note.ID == uuid.Nil || note.CreatedBy != "u1" {
		t.Fatalf("late-staged record must still get concepts applied, got %+v", note)
	}
}

func TestSaveEmptyUnitOfWork(t *testing.T) {
	registry := newTestRegistry(t)
	gdb := newTestDB(t, registry)
	u := newTestUow(t, gdb, registry, &spyPublisher{})

	affected, err := u.SaveContext(context.Background())
	if err != nil {
		t.Fatalf("empty save must succeed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 affected, got %d", affected)
	}
}

func TestSaveWithoutPublisherButWithEvents(t *testing.T) {
	registry := newTestRegistry(t)
	gdb := newTestDB(t, registry)
	u, err := New(Deps{DB: gdb, Registry: registry})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	e := &auditedEntity{Name: "x"}
	e.Raise(testEvent{Tag: "orphan"})
	u.RegisterNew(e)

	_, err = u.SaveContext(context.Background())
	if !IsCode(err, CodeInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}

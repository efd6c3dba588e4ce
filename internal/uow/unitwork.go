package uow

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/orderdesk-backend/internal/domain"
	"github.com/yungbote/orderdesk-backend/internal/platform/actorctx"
	"github.com/yungbote/orderdesk-backend/internal/platform/logger"
)

const tracerName = "github.com/yungbote/orderdesk-backend/internal/uow"

// EventPublisher delivers a domain event to its handlers. Handlers may stage
// further changes through the same unit of work; those land in the same
// commit.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

// ActorResolver supplies the acting user identifier for audit stamping.
type ActorResolver interface {
	CurrentActor(ctx context.Context) string
}

type contextActorResolver struct{}

func (contextActorResolver) CurrentActor(ctx context.Context) string {
	return actorctx.ActorID(ctx)
}

// Deps wires a UnitOfWork. DB is required; everything else has a default.
type Deps struct {
	DB          *gorm.DB
	Log         *logger.Logger
	Registry    *EntityRegistry
	Publisher   EventPublisher
	Actor       ActorResolver
	Hooks       Hooks
	Interceptor *LifecycleInterceptor
}

// UnitOfWork is one save invocation's scope of staged changes. Registration
// is safe for concurrent use (event handlers stage from publish goroutines),
// but a UnitOfWork does not support overlapping Save calls.
type UnitOfWork struct {
	db          *gorm.DB
	log         *logger.Logger
	publisher   EventPublisher
	actor       ActorResolver
	hooks       Hooks
	interceptor *LifecycleInterceptor

	mu      sync.Mutex
	records []*ChangeRecord
	saving  bool
}

func New(deps Deps) (*UnitOfWork, error) {
	if deps.DB == nil {
		return nil, NewError(CodeInternal, "uow.new", "unit of work requires a db", nil)
	}
	if deps.Actor == nil {
		deps.Actor = contextActorResolver{}
	}
	if deps.Hooks == nil {
		deps.Hooks = noopHooks{}
	}
	if deps.Interceptor == nil {
		deps.Interceptor = NewLifecycleInterceptor(deps.Registry)
	}
	log := deps.Log
	if log != nil {
		log = log.With("component", "UnitOfWork")
	}
	return &UnitOfWork{
		db:          deps.DB,
		log:         log,
		publisher:   deps.Publisher,
		actor:       deps.Actor,
		hooks:       deps.Hooks,
		interceptor: deps.Interceptor,
	}, nil
}

// RegisterNew stages entities for insertion.
func (u *UnitOfWork) RegisterNew(entities ...any) {
	u.register(StateAdded, entities)
}

// RegisterDirty stages entities for update.
func (u *UnitOfWork) RegisterDirty(entities ...any) {
	u.register(StateModified, entities)
}

// RegisterRemoved stages entities for deletion. Soft-delete-capable entities
// are rewritten into a soft-deleting update during save.
func (u *UnitOfWork) RegisterRemoved(entities ...any) {
	u.register(StateDeleted, entities)
}

func (u *UnitOfWork) register(state EntryState, entities []any) {
	if u == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, e := range entities {
		if e == nil {
			continue
		}
		u.records = append(u.records, newChangeRecord(e, state))
	}
}

// Pending returns the number of staged change records.
func (u *UnitOfWork) Pending() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.records)
}

// Save runs the full save pipeline without caller-supplied cancellation.
func (u *UnitOfWork) Save() (int64, error) {
	return u.SaveContext(context.Background())
}

// SaveContext runs concept application, event collection, concurrent event
// dispatch and the final atomic commit, in that order. It returns the number
// of affected records. Any step failing aborts the whole save; nothing is
// durable before the commit succeeds. Cancellation applies to the commit (and
// is handed to publish calls); concept application is synchronous and not
// individually cancellable.
func (u *UnitOfWork) SaveContext(ctx context.Context) (int64, error) {
	if u == nil || u.db == nil {
		return 0, NewError(CodeInternal, "uow.save", "unit of work has nil db", nil)
	}
	u.mu.Lock()
	if u.saving {
		u.mu.Unlock()
		return 0, NewError(CodeInvariantViolation, "uow.save", "save already in progress on this unit of work", nil)
	}
	u.saving = true
	u.mu.Unlock()
	defer func() {
		u.mu.Lock()
		u.saving = false
		u.mu.Unlock()
	}()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "uow.save")
	defer span.End()

	start := time.Now()
	affected, err := u.save(ctx)
	status := "success"
	if err != nil {
		status = strings.TrimSpace(string(CodeOf(err)))
		if status == "" {
			status = "failure"
		}
		if IsConflict(err) {
			u.hooks.IncConflict()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		if u.log != nil {
			u.log.Warn("unit of work save failed", "status", status, "error", err)
		}
	}
	span.SetAttributes(attribute.Int64("uow.affected", affected))
	u.hooks.ObserveSave(status, time.Since(start))
	return affected, err
}

func (u *UnitOfWork) save(ctx context.Context) (int64, error) {
	actorID := ""
	if u.actor != nil {
		actorID = u.actor.CurrentActor(ctx)
	}

	// ApplyingConcepts
	phaseStart := time.Now()
	staged := u.snapshotRecords()
	cs := &ChangeSet{records: staged}
	u.interceptor.ApplyConcepts(cs, actorID)
	u.hooks.ObservePhase("apply_concepts", "success", time.Since(phaseStart))

	// DispatchingEvents
	events := CollectEvents(cs)
	if len(events) > 0 {
		if u.publisher == nil {
			return 0, NewError(CodeInvariantViolation, "uow.dispatch", "aggregates raised events but no publisher is configured", nil)
		}
		phaseStart = time.Now()
		if err := DispatchEvents(ctx, events, u.publisher.Publish); err != nil {
			u.hooks.ObservePhase("dispatch_events", "failure", time.Since(phaseStart))
			u.hooks.IncEventsFailed()
			// Handler failures propagate with their original information
			// intact.
			return 0, err
		}
		u.hooks.ObservePhase("dispatch_events", "success", time.Since(phaseStart))
		u.hooks.IncEventsPublished(len(events))
	}

	// Handlers may have staged more records through this unit of work during
	// dispatch. Those still need concept application before the commit; their
	// own events are not collected again in this save.
	all := u.snapshotRecords()
	if len(all) > len(staged) {
		u.interceptor.ApplyConcepts(&ChangeSet{records: all[len(staged):]}, actorID)
	}
	if len(all) == 0 {
		return 0, nil
	}

	// Committing
	phaseStart = time.Now()
	affected, err := u.commit(ctx, all)
	if err != nil {
		u.hooks.ObservePhase("commit", "failure", time.Since(phaseStart))
		return 0, MapError("uow.commit", err)
	}
	u.hooks.ObservePhase("commit", "success", time.Since(phaseStart))

	u.mu.Lock()
	u.records = nil
	u.mu.Unlock()
	return affected, nil
}

func (u *UnitOfWork) snapshotRecords() []*ChangeRecord {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]*ChangeRecord(nil), u.records...)
}

func (u *UnitOfWork) commit(ctx context.Context, records []*ChangeRecord) (int64, error) {
	var affected int64
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			n, err := commitRecord(tx, rec)
			if err != nil {
				return err
			}
			affected += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func commitRecord(tx *gorm.DB, rec *ChangeRecord) (int64, error) {
	if rec == nil || rec.Entity == nil {
		return 0, nil
	}
	switch rec.State {
	case StateAdded:
		res := tx.Create(rec.Entity)
		return res.RowsAffected, res.Error
	case StateModified:
		caps := probe(rec.Entity)
		if caps.stamp != nil && strings.TrimSpace(caps.stamp.ConcurrencyToken()) != "" {
			// Guarded update: the row must still carry the token the entity
			// was loaded with, and every successful update writes a fresh
			// one. Zero rows touched means someone else won.
			oldToken := caps.stamp.ConcurrencyToken()
			caps.stamp.SetConcurrencyToken(newConcurrencyToken())
			res := tx.Model(rec.Entity).
				Where("concurrency_stamp = ?", oldToken).
				Select("*").Omit("id").
				Updates(rec.Entity)
			if res.Error != nil {
				caps.stamp.SetConcurrencyToken(oldToken)
				return 0, res.Error
			}
			if res.RowsAffected == 0 {
				caps.stamp.SetConcurrencyToken(oldToken)
				return 0, ConflictError("record changed since it was loaded")
			}
			return res.RowsAffected, nil
		}
		res := tx.Save(rec.Entity)
		return res.RowsAffected, res.Error
	case StateDeleted:
		res := tx.Delete(rec.Entity)
		return res.RowsAffected, res.Error
	default:
		return 0, InvariantError("unknown change record state")
	}
}

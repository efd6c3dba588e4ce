package uow

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LifecycleInterceptor applies cross-cutting persistence concepts to every
// staged change record, dispatching on the record's lifecycle state. It is
// pure field mutation over the referenced entities and never fails; entities
// lacking a capability simply skip the related stamping step.
type LifecycleInterceptor struct {
	registry *EntityRegistry

	// injectable for tests
	now      func() time.Time
	newID    func() uuid.UUID
	newToken func() string
}

func NewLifecycleInterceptor(registry *EntityRegistry) *LifecycleInterceptor {
	return &LifecycleInterceptor{
		registry: registry,
		now:      time.Now,
		newID:    uuid.New,
		newToken: newConcurrencyToken,
	}
}

func newConcurrencyToken() string { return uuid.NewString() }

// ApplyConcepts runs the lifecycle state machine over every record in the
// change set. All records in one call are stamped with the same timestamp.
func (i *LifecycleInterceptor) ApplyConcepts(cs *ChangeSet, actorID string) {
	if i == nil || cs == nil {
		return
	}
	now := i.now()
	for _, rec := range cs.Records() {
		if rec == nil || rec.Entity == nil {
			continue
		}
		switch rec.State {
		case StateAdded:
			i.applyAdded(rec, actorID, now)
		case StateModified:
			i.applyModified(rec, actorID, now)
		case StateDeleted:
			i.applyDeleted(rec, actorID, now)
		}
	}
}

func (i *LifecycleInterceptor) applyAdded(rec *ChangeRecord, actorID string, now time.Time) {
	caps := probe(rec.Entity)
	if caps.identity != nil && i.registry.ClientIDGeneration(rec.Entity) && caps.identity.IdentityID() == uuid.Nil {
		caps.identity.AssignIdentityID(i.newID())
	}
	if caps.stamp != nil && strings.TrimSpace(caps.stamp.ConcurrencyToken()) == "" {
		caps.stamp.SetConcurrencyToken(i.newToken())
	}
	if caps.created != nil {
		caps.created.StampCreated(now, actorID)
	}
}

func (i *LifecycleInterceptor) applyModified(rec *ChangeRecord, actorID string, now time.Time) {
	caps := probe(rec.Entity)
	if caps.modified != nil {
		caps.modified.StampModified(now, actorID)
	}
	// A modification that sets the soft-delete flag is a semantic delete
	// riding on a Modified record.
	if caps.softDelete != nil && caps.softDelete.SoftDeleted() {
		stampDeletion(caps.softDelete, actorID, now)
	}
}

func (i *LifecycleInterceptor) applyDeleted(rec *ChangeRecord, actorID string, now time.Time) {
	caps := probe(rec.Entity)
	if caps.softDelete == nil {
		// No veto; physical deletion proceeds at commit.
		return
	}
	// Discard the physical delete: rewind local mutation drift, rewrite the
	// record as a soft-deleting update.
	rec.restoreSnapshot()
	rec.State = StateModified
	caps.softDelete.MarkSoftDeleted()
	stampDeletion(caps.softDelete, actorID, now)
}

// stampDeletion is set-once on both fields, so repeated soft-deletes keep the
// first deletion's audit trail.
func stampDeletion(sd SoftDeletable, actorID string, now time.Time) {
	if sd.DeletionTime() == nil {
		sd.SetDeletionTime(now)
	}
	if strings.TrimSpace(sd.DeleterID()) == "" {
		sd.SetDeleterID(actorID)
	}
}

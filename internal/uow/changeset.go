package uow

import "reflect"

// EntryState classifies a staged change by its lifecycle.
type EntryState string

const (
	StateAdded    EntryState = "added"
	StateModified EntryState = "modified"
	StateDeleted  EntryState = "deleted"
)

// ChangeRecord is one staged entity change. Records are owned by the unit of
// work that staged them and are mutated only by the lifecycle interceptor
// during a save.
type ChangeRecord struct {
	Entity any
	State  EntryState

	// snapshot holds the entity's exported field values at registration
	// time. Captured only for Deleted records, so a vetoed physical delete
	// can rewind local mutation drift before being rewritten as an update.
	snapshot    reflect.Value
	hasSnapshot bool
}

func newChangeRecord(entity any, state EntryState) *ChangeRecord {
	rec := &ChangeRecord{Entity: entity, State: state}
	if state == StateDeleted {
		rec.captureSnapshot()
	}
	return rec
}

func (r *ChangeRecord) captureSnapshot() {
	elem, ok := structValue(r.Entity)
	if !ok {
		return
	}
	snap := reflect.New(elem.Type()).Elem()
	copyExportedFields(snap, elem)
	r.snapshot = snap
	r.hasSnapshot = true
}

// restoreSnapshot rewinds the entity's exported fields to their values at
// registration time. Unexported state (such as a pending-event queue) is left
// alone.
func (r *ChangeRecord) restoreSnapshot() {
	if !r.hasSnapshot {
		return
	}
	elem, ok := structValue(r.Entity)
	if !ok || elem.Type() != r.snapshot.Type() {
		return
	}
	copyExportedFields(elem, r.snapshot)
}

func structValue(entity any) (reflect.Value, bool) {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, false
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return elem, true
}

// copyExportedFields recurses into embedded structs so their unexported state
// (a pending-event queue, say) is never copied wholesale.
func copyExportedFields(dst, src reflect.Value) {
	t := src.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			copyExportedFields(dst.Field(i), src.Field(i))
			continue
		}
		dst.Field(i).Set(src.Field(i))
	}
}

// ChangeSet is an ordered collection of pending change records.
type ChangeSet struct {
	records []*ChangeRecord
}

func (cs *ChangeSet) Records() []*ChangeRecord {
	if cs == nil {
		return nil
	}
	return cs.records
}

func (cs *ChangeSet) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.records)
}

package uow

import (
	"reflect"

	"gorm.io/gorm"
)

// Mapping describes one registered entity type.
type Mapping struct {
	Prototype any
	ClientIDs bool
}

// MappingOption customizes a registration.
type MappingOption func(*Mapping)

// WithClientIDs marks the entity's identity as client-generated: the
// lifecycle interceptor assigns a fresh uuid on insert when the identity is
// still zero. Without it, identity is left to the database.
func WithClientIDs() MappingOption {
	return func(m *Mapping) { m.ClientIDs = true }
}

// EntityRegistry holds the set of entity-to-storage mappings. It is built
// explicitly at startup and passed to whoever needs it; there is no global
// registry.
type EntityRegistry struct {
	mappings map[reflect.Type]Mapping
	order    []reflect.Type
}

func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{mappings: map[reflect.Type]Mapping{}}
}

// Register adds an entity prototype (a pointer to a struct). Registering the
// same type twice replaces the earlier mapping.
func (r *EntityRegistry) Register(prototype any, opts ...MappingOption) error {
	if r == nil {
		return InvariantError("nil entity registry")
	}
	t, ok := prototypeType(prototype)
	if !ok {
		return ValidationError("entity prototype must be a non-nil pointer to a struct")
	}
	m := Mapping{Prototype: prototype}
	for _, opt := range opts {
		opt(&m)
	}
	if _, exists := r.mappings[t]; !exists {
		r.order = append(r.order, t)
	}
	r.mappings[t] = m
	return nil
}

// ClientIDGeneration reports whether the entity's type was registered for
// client-side identity generation.
func (r *EntityRegistry) ClientIDGeneration(entity any) bool {
	if r == nil {
		return false
	}
	t, ok := prototypeType(entity)
	if !ok {
		return false
	}
	return r.mappings[t].ClientIDs
}

// Prototypes returns registered prototypes in registration order.
func (r *EntityRegistry) Prototypes() []any {
	if r == nil {
		return nil
	}
	out := make([]any, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.mappings[t].Prototype)
	}
	return out
}

// Migrate applies the registered mappings to the database schema. Consumed
// once, at startup.
func (r *EntityRegistry) Migrate(db *gorm.DB) error {
	if r == nil || db == nil {
		return InvariantError("registry and db are required for migration")
	}
	protos := r.Prototypes()
	if len(protos) == 0 {
		return nil
	}
	if err := db.AutoMigrate(protos...); err != nil {
		return MapError("uow.migrate", err)
	}
	return nil
}

func prototypeType(v any) (reflect.Type, bool) {
	if v == nil {
		return nil, false
	}
	t := reflect.TypeOf(v)
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return nil, false
	}
	return t.Elem(), true
}

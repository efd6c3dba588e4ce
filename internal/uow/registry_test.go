package uow

import "testing"

func TestRegistryClientIDGeneration(t *testing.T) {
	registry := NewEntityRegistry()
	if err := registry.Register(&auditedEntity{}, WithClientIDs()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(&bareEntity{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !registry.ClientIDGeneration(&auditedEntity{}) {
		t.Fatalf("expected client id generation for auditedEntity")
	}
	if registry.ClientIDGeneration(&bareEntity{}) {
		t.Fatalf("bareEntity must not use client ids")
	}
	if registry.ClientIDGeneration(&noteEntity{}) {
		t.Fatalf("unregistered types must not use client ids")
	}
}

func TestRegistryRejectsBadPrototypes(t *testing.T) {
	registry := NewEntityRegistry()
	if err := registry.Register(nil); err == nil {
		t.Fatalf("nil prototype must be rejected")
	}
	if err := registry.Register(auditedEntity{}); err == nil {
		t.Fatalf("non-pointer prototype must be rejected")
	}
	if err := registry.Register(new(int)); err == nil {
		t.Fatalf("non-struct prototype must be rejected")
	}
}

func TestRegistryPrototypesPreserveOrder(t *testing.T) {
	registry := NewEntityRegistry()
	_ = registry.Register(&auditedEntity{})
	_ = registry.Register(&bareEntity{})
	_ = registry.Register(&noteEntity{})

	protos := registry.Prototypes()
	if len(protos) != 3 {
		t.Fatalf("expected 3 prototypes, got %d", len(protos))
	}
	if _, ok := protos[0].(*auditedEntity); !ok {
		t.Fatalf("registration order must be preserved")
	}
	if _, ok := protos[2].(*noteEntity); !ok {
		t.Fatalf("registration order must be preserved")
	}

	// Re-registering replaces the mapping without duplicating the slot.
	_ = registry.Register(&bareEntity{}, WithClientIDs())
	if len(registry.Prototypes()) != 3 {
		t.Fatalf("re-registration must not duplicate")
	}
	if !registry.ClientIDGeneration(&bareEntity{}) {
		t.Fatalf("re-registration must replace options")
	}
}

package events

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/orderdesk-backend/internal/domain"
)

type pingEvent struct{ N int }

func (pingEvent) EventName() string { return "ping" }

func TestMemoryBusRoutesByName(t *testing.T) {
	bus := NewMemoryBus()
	var got []int
	bus.Subscribe("ping", func(ctx context.Context, e domain.Event) error {
		got = append(got, e.(pingEvent).N)
		return nil
	})
	bus.Subscribe("other", func(ctx context.Context, e domain.Event) error {
		t.Fatalf("wrong handler invoked")
		return nil
	})

	if err := bus.Publish(context.Background(), pingEvent{N: 7}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("expected [7], got %v", got)
	}
}

func TestMemoryBusNoSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	if err := bus.Publish(context.Background(), pingEvent{}); err != nil {
		t.Fatalf("publishing into the void must succeed: %v", err)
	}
}

func TestMemoryBusHandlerErrorStopsChain(t *testing.T) {
	bus := NewMemoryBus()
	boom := errors.New("boom")
	var secondRan bool
	bus.Subscribe("ping", func(ctx context.Context, e domain.Event) error { return boom })
	bus.Subscribe("ping", func(ctx context.Context, e domain.Event) error {
		secondRan = true
		return nil
	})

	if err := bus.Publish(context.Background(), pingEvent{}); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if secondRan {
		t.Fatalf("handlers after a failure must not run")
	}
}

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(pingEvent{N: 3})
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if env.Name != "ping" {
		t.Fatalf("expected name ping, got %q", env.Name)
	}
	if env.EventID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected event id")
	}
	if string(env.Payload) != `{"N":3}` {
		t.Fatalf("unexpected payload %s", env.Payload)
	}
}

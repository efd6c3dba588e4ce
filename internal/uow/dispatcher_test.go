package uow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/orderdesk-backend/internal/domain"
)

func TestDispatchEventsInvokesEveryPublish(t *testing.T) {
	events := []CollectedEvent{
		{Event: testEvent{Tag: "1"}},
		{Event: testEvent{Tag: "2"}},
		{Event: testEvent{Tag: "3"}},
	}

	var mu sync.Mutex
	seen := map[string]int{}
	publish := func(ctx context.Context, e domain.Event) error {
		mu.Lock()
		seen[e.(testEvent).Tag]++
		mu.Unlock()
		return nil
	}

	if err := DispatchEvents(context.Background(), events, publish); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct events, got %v", seen)
	}
	for tag, n := range seen {
		if n != 1 {
			t.Fatalf("event %q published %d times", tag, n)
		}
	}
}

func TestDispatchEventsRunsConcurrently(t *testing.T) {
	const n = 4
	events := make([]CollectedEvent, n)
	for i := range events {
		events[i] = CollectedEvent{Event: testEvent{Tag: "t"}}
	}

	// Every publish blocks until all have started; sequential dispatch would
	// never get past the first one.
	var barrier sync.WaitGroup
	barrier.Add(n)
	publish := func(ctx context.Context, e domain.Event) error {
		barrier.Done()
		done := make(chan struct{})
		go func() {
			barrier.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("dispatch is not concurrent")
		}
	}

	if err := DispatchEvents(context.Background(), events, publish); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestDispatchEventsFailurePropagatesOriginal(t *testing.T) {
	handlerErr := errors.New("handler exploded")
	events := []CollectedEvent{
		{Event: testEvent{Tag: "ok"}},
		{Event: testEvent{Tag: "boom"}},
		{Event: testEvent{Tag: "ok2"}},
	}

	var completed int32
	publish := func(ctx context.Context, e domain.Event) error {
		defer atomic.AddInt32(&completed, 1)
		if e.(testEvent).Tag == "boom" {
			return handlerErr
		}
		return nil
	}

	err := DispatchEvents(context.Background(), events, publish)
	if !errors.Is(err, handlerErr) {
		t.Fatalf("handler failure must surface unmodified, got %v", err)
	}
	// Dispatch waits for every invocation even after a failure.
	if got := atomic.LoadInt32(&completed); got != 3 {
		t.Fatalf("expected all publishes to complete, got %d", got)
	}
}

func TestDispatchEventsNoEvents(t *testing.T) {
	if err := DispatchEvents(context.Background(), nil, nil); err != nil {
		t.Fatalf("no events must be a no-op, got %v", err)
	}
}

func TestDispatchEventsMissingPublisher(t *testing.T) {
	events := []CollectedEvent{{Event: testEvent{Tag: "x"}}}
	err := DispatchEvents(context.Background(), events, nil)
	if !IsCode(err, CodeInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}

package uow

import "github.com/yungbote/orderdesk-backend/internal/domain"

// CollectedEvent pairs a drained domain event with the aggregate it came
// from.
type CollectedEvent struct {
	Source any
	Event  domain.Event
}

// CollectEvents drains the pending-event queue of every aggregate root in the
// change set. Queue order is preserved per aggregate. Draining clears each
// queue in place, so an event is observed exactly once even if the same
// instance is saved again later.
func CollectEvents(cs *ChangeSet) []CollectedEvent {
	var out []CollectedEvent
	for _, rec := range cs.Records() {
		if rec == nil {
			continue
		}
		src, ok := rec.Entity.(EventSource)
		if !ok {
			continue
		}
		pending := src.PendingEvents()
		if len(pending) == 0 {
			continue
		}
		for _, e := range pending {
			if e == nil {
				continue
			}
			out = append(out, CollectedEvent{Source: rec.Entity, Event: e})
		}
		src.ClearPendingEvents()
	}
	return out
}

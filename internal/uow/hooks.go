package uow

import "time"

// Hooks captures unit-of-work observability events.
type Hooks interface {
	ObserveSave(status string, dur time.Duration)
	ObservePhase(phase, status string, dur time.Duration)
	IncConflict()
	IncEventsPublished(n int)
	IncEventsFailed()
}

type noopHooks struct{}

func (noopHooks) ObserveSave(string, time.Duration)          {}
func (noopHooks) ObservePhase(string, string, time.Duration) {}
func (noopHooks) IncConflict()                               {}
func (noopHooks) IncEventsPublished(int)                     {}
func (noopHooks) IncEventsFailed()                           {}

package recommend

import (
	"time"

	"github.com/riftlabs/decisioncore/internal/market"
)

// EventKind names the shape of an Event's fields. Observers switch on this
// rather than the event's Go type.
type EventKind string

const (
	EventEngineRunStarted   EventKind = "engine_run_started"
	EventEngineRunFinished  EventKind = "engine_run_finished"
	EventStrategyFailed     EventKind = "strategy_failed"
	EventCacheHit           EventKind = "cache_hit"
	EventCacheMiss          EventKind = "cache_miss"
	EventSchedulerTickSummary EventKind = "scheduler_tick_summary"
)

// Event is the single payload shape passed to Observer.OnEvent. Not every
// field is populated for every Kind; see the EventXxx constants' usage
// sites for which fields apply.
type Event struct {
	Kind       EventKind
	Instrument market.Instrument
	AsOf       time.Time
	Err        error
	Strategy   string
	Duration   time.Duration
	Summary    *TickSummary
}

// Observer receives pipeline events for logging, metrics, or forwarding.
// The core makes no assumption about what an Observer does with an event;
// OnEvent must not block the caller for long or panic.
type Observer interface {
	OnEvent(e Event)
}

// NopObserver discards every event. It is the default when none is wired.
type NopObserver struct{}

// OnEvent implements Observer.
func (NopObserver) OnEvent(Event) {}

// MultiObserver fans one event out to several Observers in order.
type MultiObserver []Observer

// OnEvent implements Observer.
func (m MultiObserver) OnEvent(e Event) {
	for _, o := range m {
		o.OnEvent(e)
	}
}

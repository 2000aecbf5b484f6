package strategy

import (
	"context"
	"sync"

	"github.com/riftlabs/decisioncore/internal/market"
)

// Metadata describes a strategy's static properties.
type Metadata struct {
	Name          string
	Description   string
	RequiredHistory int
	DefaultWeight float64
}

// Strategy is the capability set every registered strategy implements.
// Evaluate must be a pure function of series: equal input must produce an
// equal Signal, and it must never panic for a series shorter than its
// declared RequiredHistory — it returns a NEUTRAL/insufficient_data Signal
// instead.
type Strategy interface {
	Metadata() Metadata
	RequiredHistory() int
	Evaluate(ctx context.Context, series market.CandleSeries) Signal
}

// entry is the registry's internal bookkeeping record for one strategy.
type entry struct {
	strategy      Strategy
	currentWeight float64
	enabled       bool
}

// Registered is one immutable row of a Snapshot.
type Registered struct {
	Strategy Strategy
	Weight   float64
	Enabled  bool
}

// Snapshot is an immutable view of the registry at the moment it was taken.
// An in-flight engine run holds a Snapshot and is unaffected by subsequent
// registry mutations.
type Snapshot struct {
	Generation uint64
	Entries    []Registered
}

// Enabled returns only the enabled entries, preserving registration order.
func (s Snapshot) Enabled() []Registered {
	out := make([]Registered, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// RequiredHistory returns the maximum RequiredHistory across enabled
// strategies in the snapshot, 0 if none are enabled.
func (s Snapshot) RequiredHistory() int {
	max := 0
	for _, e := range s.Enabled() {
		if h := e.Strategy.RequiredHistory(); h > max {
			max = h
		}
	}
	return max
}

// Registry holds the set of active strategies, guarded by a reader-writer
// discipline: Snapshot never blocks concurrent snapshots, while mutations
// serialize against each other and against snapshot-taking.
type Registry struct {
	mu         sync.RWMutex
	order      []string
	entries    map[string]*entry
	generation uint64
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds or replaces the strategy under its Metadata().Name,
// enabled by default at its DefaultWeight. Registering the same name twice
// replaces the entry in place (preserving its position) and increments the
// generation counter.
func (r *Registry) Register(s Strategy) {
	meta := s.Metadata()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[meta.Name]; !exists {
		r.order = append(r.order, meta.Name)
	}
	r.entries[meta.Name] = &entry{
		strategy:      s,
		currentWeight: meta.DefaultWeight,
		enabled:       true,
	}
	r.generation++
}

// SetWeight sets the current weight for name. w must be non-negative.
func (r *Registry) SetWeight(name string, w float64) bool {
	if w < 0 {
		w = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return false
	}
	e.currentWeight = w
	r.generation++
	return true
}

// SetEnabled toggles whether name participates in future engine runs.
func (r *Registry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return false
	}
	e.enabled = enabled
	r.generation++
	return true
}

// Get returns the current (weight, enabled) state for name.
func (r *Registry) Get(name string) (Registered, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Registered{}, false
	}
	return Registered{Strategy: e.strategy, Weight: e.currentWeight, Enabled: e.enabled}, true
}

// Snapshot takes an immutable copy of the registry's current state, to be
// held by a single engine run. Taking a snapshot never blocks other
// readers.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Registered, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		entries = append(entries, Registered{
			Strategy: e.strategy,
			Weight:   e.currentWeight,
			Enabled:  e.enabled,
		})
	}
	return Snapshot{Generation: r.generation, Entries: entries}
}

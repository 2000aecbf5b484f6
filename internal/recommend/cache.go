package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/riftlabs/decisioncore/internal/config"
	"github.com/riftlabs/decisioncore/internal/market"
)

// slotState is the lifecycle of one cache key.
type slotState int

const (
	stateEmpty slotState = iota
	stateBuilding
	stateReady
)

// Builder produces a Recommendation for one (instrument, asOf) on a cache
// miss. It is the same signature as Engine.Recommend so the cache can wrap
// an Engine directly.
type Builder func(ctx context.Context, instrument market.Instrument, asOf time.Time) (Recommendation, error)

// cacheKey identifies one cached Recommendation. AsOf is truncated to the
// decision timeframe so repeated requests within the same bar hit the same
// slot.
type cacheKey struct {
	Instrument market.Instrument
	AsOf       time.Time
}

func (k cacheKey) redisKey() string {
	return fmt.Sprintf("decisioncore:recommendation:%s:%d", k.Instrument, k.AsOf.Unix())
}

// slot holds one key's build state. Every waiter on a Building slot blocks
// on done and then reads result/err, so all waiters observe a structurally
// identical outcome for that build.
type slot struct {
	mu         sync.Mutex
	state      slotState
	result     Recommendation
	err        error
	insertedAt time.Time // when the current result was published as Ready
	done       chan struct{}
}

// History page-size bounds. The per-instrument ring buffer keeps
// historyCapacity (= MaxHistoryLimit) entries.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
	historyCapacity     = MaxHistoryLimit
)

// RecommendationCache is a true single-flight cache: concurrent callers
// requesting the same key while a build is in flight share that one build
// rather than triggering duplicate builders. A global mutex guards only slot
// creation/lookup/deletion; the builder itself always runs outside that
// lock, so one slow build never blocks lookups for unrelated keys.
type RecommendationCache struct {
	mu        sync.Mutex
	slots     map[cacheKey]*slot
	ttl       time.Duration
	timeframe time.Duration
	redis     *redis.Client // optional Ready-entry mirror; nil disables it
	observer  Observer

	histMu  sync.Mutex
	history map[market.Instrument][]Recommendation
}

// NewRecommendationCache builds a cache with the given TTL and decision
// timeframe (used to truncate AsOf into a bar boundary for keying). redisClient
// may be nil to disable the optional Redis mirror.
func NewRecommendationCache(ttl, timeframe time.Duration, redisClient *redis.Client, observer Observer) *RecommendationCache {
	if observer == nil {
		observer = NopObserver{}
	}
	return &RecommendationCache{
		slots:     make(map[cacheKey]*slot),
		ttl:       ttl,
		timeframe: timeframe,
		redis:     redisClient,
		observer:  observer,
		history:   make(map[market.Instrument][]Recommendation),
	}
}

// GetOrBuild returns the cached Recommendation for (instrument, asOf) if a
// Ready entry exists and has not expired, otherwise runs build — exactly
// once per key, regardless of how many callers race to call GetOrBuild for
// the same key concurrently.
func (c *RecommendationCache) GetOrBuild(ctx context.Context, instrument market.Instrument, asOf time.Time, build Builder) (Recommendation, error) {
	key := cacheKey{Instrument: instrument, AsOf: asOf.Truncate(c.timeframe)}

	c.mu.Lock()
	s, exists := c.slots[key]
	if exists {
		s.mu.Lock()
		switch s.state {
		case stateReady:
			if time.Since(s.insertedAt) < c.ttl || c.ttl <= 0 {
				s.mu.Unlock()
				c.mu.Unlock()
				c.observer.OnEvent(Event{Kind: EventCacheHit, Instrument: instrument, AsOf: asOf})
				return s.result, s.err
			}
			// Expired: fall through and rebuild in place, still single-flight.
			s.state = stateBuilding
			s.done = make(chan struct{})
			s.mu.Unlock()
			c.mu.Unlock()
			c.buildInto(ctx, s, instrument, asOf, build)
			<-s.done
			return s.result, s.err
		case stateBuilding:
			done := s.done
			s.mu.Unlock()
			c.mu.Unlock()
			c.observer.OnEvent(Event{Kind: EventCacheMiss, Instrument: instrument, AsOf: asOf})
			select {
			case <-done:
				s.mu.Lock()
				defer s.mu.Unlock()
				return s.result, s.err
			case <-ctx.Done():
				return Recommendation{}, ErrCancelled
			}
		}
		s.mu.Unlock()
	}

	s = &slot{state: stateBuilding, done: make(chan struct{})}
	c.slots[key] = s
	c.mu.Unlock()

	c.observer.OnEvent(Event{Kind: EventCacheMiss, Instrument: instrument, AsOf: asOf})
	c.buildInto(ctx, s, instrument, asOf, build)
	<-s.done
	return s.result, s.err
}

// buildInto runs build outside any lock and publishes the result into s,
// waking every waiter blocked on s.done. A cancelled build is never
// published as Ready: the slot is dropped from the map entirely so the next
// caller with a fresh context starts a clean build rather than observing a
// stale Cancelled error.
func (c *RecommendationCache) buildInto(ctx context.Context, s *slot, instrument market.Instrument, asOf time.Time, build Builder) {
	result, err := build(ctx, instrument, asOf)

	key := cacheKey{Instrument: instrument, AsOf: asOf.Truncate(c.timeframe)}

	if errors.Is(err, ErrCancelled) {
		c.mu.Lock()
		if c.slots[key] == s {
			delete(c.slots, key)
		}
		c.mu.Unlock()

		s.mu.Lock()
		s.result, s.err = result, err
		done := s.done
		s.mu.Unlock()
		close(done)
		return
	}

	s.mu.Lock()
	s.result, s.err = result, err
	s.state = stateReady
	s.insertedAt = time.Now()
	done := s.done
	s.mu.Unlock()
	close(done)

	if err == nil {
		c.recordHistory(instrument, result)
		if c.redis != nil {
			go c.mirror(key, result)
		}
	}
}

// recordHistory appends rec to instrument's ring buffer, evicting the oldest
// entry once historyCapacity is reached. Entries are kept oldest-first so
// History can reverse just the requested page instead of the whole buffer.
func (c *RecommendationCache) recordHistory(instrument market.Instrument, rec Recommendation) {
	c.histMu.Lock()
	defer c.histMu.Unlock()

	entries := append(c.history[instrument], rec)
	if len(entries) > historyCapacity {
		entries = entries[len(entries)-historyCapacity:]
	}
	c.history[instrument] = entries
}

// History returns up to limit Recommendations for instrument, most recent
// first, skipping the first offset entries. A non-positive limit means
// DefaultHistoryLimit, a limit above MaxHistoryLimit is clamped to it, and a
// negative offset is treated as 0.
func (c *RecommendationCache) History(instrument market.Instrument, limit, offset int) []Recommendation {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	c.histMu.Lock()
	entries := c.history[instrument]
	c.histMu.Unlock()

	if offset >= len(entries) {
		return []Recommendation{}
	}

	// entries is oldest-first; walk backwards from the newest entry so
	// offset 0 is always "most recently built", regardless of buffer fill.
	out := make([]Recommendation, 0, limit)
	for i := len(entries) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out
}

func (c *RecommendationCache) mirror(key cacheKey, rec Recommendation) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.redis.Set(ctx, key.redisKey(), payload, c.ttl).Err(); err != nil {
		config.NewLogger("recommend.cache").Debug().Err(err).Str("key", key.redisKey()).Msg("redis mirror write failed")
	}
}

// Invalidate drops every cached entry for instrument, forcing the next
// GetOrBuild call for any as_of to rebuild.
func (c *RecommendationCache) Invalidate(instrument market.Instrument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.slots {
		if key.Instrument == instrument {
			delete(c.slots, key)
		}
	}
}

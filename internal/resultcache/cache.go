package resultcache

import (
	"container/list"
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"libris/internal/logging"
)

// defaultEntryWeight approximates the in-memory cost of one cached value
// when no weigher is configured.
const defaultEntryWeight = 512

// Stats reports the cache's current state. Hit and miss counts come from
// real counters.
type Stats struct {
	Entries        int    `json:"entries"`
	EstimatedBytes int64  `json:"estimated_bytes"`
	Hits           uint64 `json:"hits"`
	Misses         uint64 `json:"misses"`
	Evictions      uint64 `json:"evictions"`
}

// Cache is a TTL- and capacity-bounded store mapping string keys to values
// of type V. Safe for concurrent use.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	weigher  func(V) int
	logger   *slog.Logger
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	weight   int64

	hits      uint64
	misses    uint64
	evictions uint64
}

type entry[V any] struct {
	key       string
	value     V
	weight    int
	expiresAt time.Time
}

// Option customizes cache construction.
type Option[V any] func(*Cache[V])

// WithWeigher supplies a per-value memory estimate used by Stats.
func WithWeigher[V any](weigher func(V) int) Option[V] {
	return func(c *Cache[V]) {
		if weigher != nil {
			c.weigher = weigher
		}
	}
}

// New creates a cache holding at most capacity entries, each expiring ttl
// after insertion.
func New[V any](capacity int, ttl time.Duration, logger *slog.Logger, opts ...Option[V]) *Cache[V] {
	if capacity < 1 {
		capacity = 1
	}
	c := &Cache[V]{
		capacity: capacity,
		ttl:      ttl,
		weigher:  func(V) int { return defaultEntryWeight },
		logger:   logging.NewComponentLogger(logger, "resultcache"),
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key joins an operation name and its parameters into a cache key.
func Key(operation string, params ...string) string {
	return operation + ":" + strings.Join(params, ":")
}

// Get returns the live value for key. Expired entries count as misses and
// are removed on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}
	ent := element.Value.(*entry[V])
	if time.Now().After(ent.expiresAt) {
		c.removeElement(element)
		c.misses++
		return zero, false
	}
	c.order.MoveToFront(element)
	c.hits++
	return ent.value, true
}

// GetWithTimeout races Get against a deadline so a stalled cache never
// delays the hot path. A timeout is reported as a miss, not an error.
func (c *Cache[V]) GetWithTimeout(ctx context.Context, key string, timeout time.Duration) (V, bool) {
	var zero V
	if timeout <= 0 {
		return c.Get(key)
	}

	type result struct {
		value V
		ok    bool
	}
	done := make(chan result, 1)
	go func() {
		v, ok := c.Get(key)
		done <- result{v, ok}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-done:
		return r.value, r.ok
	case <-timer.C:
		c.logger.Warn("cache read exceeded budget, treating as miss",
			logging.String("key", key),
			logging.Duration("budget", timeout))
		return zero, false
	case <-ctx.Done():
		return zero, false
	}
}

// Set stores value under key, evicting the least recently used entries when
// over capacity.
func (c *Cache[V]) Set(key string, value V) {
	weight := c.weigher(value)
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		ent := element.Value.(*entry[V])
		c.weight += int64(weight - ent.weight)
		ent.value = value
		ent.weight = weight
		ent.expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(element)
		return
	}

	ent := &entry[V]{key: key, value: value, weight: weight, expiresAt: time.Now().Add(c.ttl)}
	c.entries[key] = c.order.PushFront(ent)
	c.weight += int64(weight)

	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		c.evictions++
	}
}

// InvalidateAll removes every live entry and all eviction bookkeeping.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[string]*list.Element, c.capacity)
	c.order.Init()
	c.weight = 0

	c.logger.Debug("invalidated cache", logging.Int("removed", removed))
}

// Stats returns entry count, estimated memory weight, and counter values.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:        len(c.entries),
		EstimatedBytes: c.weight,
		Hits:           c.hits,
		Misses:         c.misses,
		Evictions:      c.evictions,
	}
}

func (c *Cache[V]) removeElement(element *list.Element) {
	ent := element.Value.(*entry[V])
	delete(c.entries, ent.key)
	c.order.Remove(element)
	c.weight -= int64(ent.weight)
}

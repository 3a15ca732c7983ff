// Package resultcache provides the shared in-process cache for search and
// summarization results: capacity-bounded with least-recently-used
// eviction, per-entry time-to-live, counters backing real hit/miss stats,
// and an invalidation call that removes entries and eviction bookkeeping
// alike. The cache owns its synchronization; callers never lock.
package resultcache

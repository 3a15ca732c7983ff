// Package background runs fire-and-forget work, such as cache refreshes and
// deferred persistence, on a bounded single-worker queue that never blocks
// its callers.
package background

// Package search aggregates book results across catalogs: concurrent
// fan-out under per-source timeouts, relevance scoring, duplicate collapse,
// and a TTL cache for repeat queries.
package search

// Package store persists generated summaries and audio metadata in a
// SQLite database under the data directory, guarded by a file lock so only
// one process writes at a time.
package store

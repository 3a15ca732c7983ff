// Package dedupe collapses duplicate catalog records. Records from
// different catalogs describing the same work are grouped by identity key
// and reduced to a single winner; every search result passes through this
// step unconditionally.
package dedupe

// Package logging configures slog for libris.
//
// Two output formats are supported: a compact console format for
// interactive use and JSON for machine consumption. Attr helpers keep call
// sites terse and field keys consistent across components.
package logging

// Package config loads, validates, and defaults the libris configuration.
//
// Configuration lives in a TOML file, by default
// ~/.config/libris/config.toml, with a project-local libris.toml fallback.
// All duration knobs are expressed in seconds in the file and exposed as
// time.Duration accessors.
package config

// Package config loads, normalizes, and validates tagdeck configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TAGDECK_FETCH_API_KEY. The Config type centralizes the tag-file naming
// convention, filename limits, remote fetch settings, and logging options so
// the CLI and the core packages agree on one set of values.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

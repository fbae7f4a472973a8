// Package services defines shared utilities consumed by the tagging core and
// the CLI host.
//
// Key responsibilities:
//   - Context helpers that stamp media paths, operation names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the CLI separate
//     recoverable user-facing failures from unexpected faults.
//
// Use these helpers when wiring new operations so error handling and
// observability stay uniform.
package services

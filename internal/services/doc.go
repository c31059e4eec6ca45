// Package services defines shared utilities consumed by the analysis
// pipeline and the CLI surface.
//
// Key responsibilities:
//   - Context helpers that stamp transcript paths, analysis type names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures classify
//     consistently (configuration vs prerequisite vs invocation vs storage).
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across components.
package services

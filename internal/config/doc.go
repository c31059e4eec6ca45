// Package config loads, validates, and normalizes the TOML configuration.
//
// Configuration sections by subsystem:
//   - Paths: transcript store, analysis type definitions, logs, catalog
//   - LLM: shared connection settings for the analysis invoker
//   - Analysis: judge-loop pairings and round limits
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
//
// Load applies defaults first, overlays the file when present, expands
// `~` in every path field, and validates the result. A missing config file
// is not an error; the defaults describe a usable local setup.
package config

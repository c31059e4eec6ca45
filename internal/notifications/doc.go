// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Callers depend only on the small Service interface, so batch and
// CLI code never carries HTTP glue.
package notifications

// Package notifications sends operator alerts to an ntfy topic.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers publish unconditionally. Events cover daemon startup, missing
// dependencies and merge failures.
package notifications

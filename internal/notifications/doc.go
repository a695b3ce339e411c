// Package notifications delivers onboarding events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured
// in config.toml and gracefully degrades to a no-op when notifications are
// disabled. The engine treats every notification as fire-and-forget;
// delivery failures are logged, never propagated.
package notifications

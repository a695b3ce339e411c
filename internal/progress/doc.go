// Package progress persists onboarding sessions and their stage, field, and
// skip state in SQLite.
//
// The Store manages database connections, schema initialization, busy
// retries, and the row-level operations the engine composes into higher
// level semantics. Session counters (steps/fields completed and skipped)
// are never stored; SessionCounters recomputes them from stage_progress and
// field_progress rows so there is a single source of truth.
//
// Skip records are append-only: unskipping marks the originating record
// inactive and stamps the closing metadata, it never deletes history.
// Schema changes bump schemaVersion in schema.go; operators clear the
// database to adopt a new schema.
package progress

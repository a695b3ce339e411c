// Package logging builds slog loggers for onboard.
//
// Two handlers are provided: a console handler that prints compact
// timestamped lines with key=value attributes (colorized when attached to a
// terminal) and a JSON handler for machine consumption. NewFromConfig wires
// the configured level, format, and log directory.
//
// Standardized field keys (session, stage, field, component) keep log
// queries consistent across the engine, reconciler, and CLI.
package logging

// Package validation evaluates per-stage rules over loosely typed payloads.
//
// ValidateStage is pure: it inspects a field map against the catalog's
// declarations and stage-specific rules, returning field-keyed errors and
// warnings. Missing required fields are errors; recommended-but-optional
// conditions are warnings. Numeric fields accept numbers or numeric strings
// but reject non-numeric strings outright rather than coercing to zero.
//
// The engine decides what to do with a Result: advisory during auto-save
// (stored, never blocking) and enforcing during explicit stage submission.
package validation

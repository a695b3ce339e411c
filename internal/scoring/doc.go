// Package scoring computes the weighted onboarding completion score.
//
// Score is a pure function over a vector of stage standings and factors so
// the arithmetic stays unit-testable and decoupled from persistence. The
// damping and skip-credit factors reproduce observed production behavior
// and are carried as configuration, not derived semantics.
package scoring

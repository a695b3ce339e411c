// Package engine coordinates the onboarding progress lifecycle: session
// initialization, field and stage updates, skip management, completion
// scoring, and entity activation.
//
// All mutating operations hold a per-session mutex so concurrent writers
// to the same session serialize; different sessions proceed independently.
// Stage and session counters are always recomputed from stored rows rather
// than incremented, so a crash between writes can never leave the counts
// out of step with the data.
package engine

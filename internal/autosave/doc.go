// Package autosave reconciles frequent, possibly out-of-order field writes
// into the progress store without blocking the caller's interaction loop.
//
// Writes are last-write-wins per field, keyed by the caller-supplied
// timestamp. A stale write never regresses a completed field unless its
// value was genuinely emptied. Persistence failures on this path are soft:
// logged, classified in the Result, and never propagated — explicit stage
// submission goes through the engine instead and does propagate.
package autosave

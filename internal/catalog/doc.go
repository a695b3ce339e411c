// Package catalog declares the fixed ordered sequence of property
// onboarding stages, their tracked fields, and the weight each stage
// contributes to the overall completion score.
//
// The catalog is a static table consumed read-only by the progress store,
// validation rules, the engine, and the completion evaluator. Stage numbers
// are contiguous starting at 1 and stage weights always sum to exactly 100;
// Validate enforces both and runs in tests so a bad edit fails fast.
//
// Add new stages by extending the table, renumbering if needed, and
// rebalancing weights; every other package derives its view from here.
package catalog

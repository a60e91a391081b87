// Package analytics computes statistics over reconstructed daily investor flows.
//
// Every function in this package is pure: it takes flow records (and, where
// relevant, index futures price bars) and returns freshly allocated results.
// Inputs are never modified and the functions are safe for concurrent use.
//
// # Conventions
//
// Flows are expressed in thousands of BRL. Positive values mean net buying,
// negative values net selling. Records are grouped by investor category and
// each group is ordered by ascending date before any computation.
//
// Results are produced per category in lexicographic category order so that
// callers get deterministic output from the same snapshot.
//
// # Insufficient data
//
// Too little history is never an error. A function that needs N points
// simply produces nothing for a category with fewer points. Every ratio is
// guarded so that no result field is ever NaN or infinite.
package analytics

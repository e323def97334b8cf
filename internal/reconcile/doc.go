// Package reconcile matches a requested title list against a catalog snapshot
// and drives deletions.
//
// Titles are compared by their Normalize key only. BuildIndex takes one
// catalog snapshot per run; Reconcile walks the requests strictly in order,
// calling the Deleter for each match and turning every failure into a
// not-found outcome so the run always completes. Summarize derives counts and
// reclaimed space from the outcomes.
//
// Rounding is half away from zero everywhere: whole gigabytes for the summary
// (RoundGB) and two decimals per movie (GB).
package reconcile

// Package history persists a local audit trail of reconciliation runs in
// SQLite (modernc.org/sqlite, no cgo).
//
// Each run row carries the summary counts and the report file locations; the
// per-title outcomes are stored alongside in request order so a past run can
// be inspected without the JSON reports.
package history

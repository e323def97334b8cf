// Package report shapes reconciliation outcomes into the two audit documents
// (movies_deleted.json and movies_not_found.json) and persists them under a
// date-stamped directory.
//
// Build is pure; Write and Read own the filesystem side.
package report

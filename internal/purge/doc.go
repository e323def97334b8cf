// Package purge orchestrates a single prunarr run.
//
// A Runner holds the run lock, reads the request list, fetches the Radarr
// catalog once, and hands both to the reconciliation engine with a deleter
// backed by the Radarr client. Afterwards it writes the dated JSON reports,
// records the run in history when enabled, and pushes an ntfy summary.
//
// Catalog fetch failures abort before any deletion and leave no report.
// Plan runs the same lookup read-only for the "plan" command.
package purge

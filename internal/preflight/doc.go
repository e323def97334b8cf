// Package preflight provides readiness checks for Radarr and the filesystem
// paths a run depends on.
//
// The run orchestrator checks the output directories before it touches the
// catalog; the CLI "check" command runs the full set via RunAll and renders
// each Result as a status line.
package preflight

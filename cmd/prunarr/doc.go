// Package main hosts the prunarr CLI entrypoint and command graph.
//
// "run" performs a deletion pass and writes the dated reports, "plan" shows
// what a run would match, "history" reads the local run audit, and "check"
// verifies Radarr access and paths before a run. Configuration resolution and
// logger setup happen once per invocation in commandContext.
package main

// Package notifications pushes run results and failures to ntfy.
//
// The topic URL comes from config.toml (or PRUNARR_NTFY_TOPIC). Without a
// topic every method is a no-op, and the run_completed / errors toggles
// silence individual event types.
package notifications

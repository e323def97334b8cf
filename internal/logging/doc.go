// Package logging assembles structured slog loggers and formatting helpers used
// across prunarr.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so run code can tag log lines
// with the run correlation ID and stage. The package also provides a no-op
// logger for tests and wiring code that cannot fail, plus retention pruning
// for the log directory.
package logging

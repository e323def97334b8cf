// Package services defines shared utilities consumed by the run workflow and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run correlation identifiers and stage names
//     for logging.
//   - Structured error markers plus the Wrap helper so fatal run errors can be
//     classified (configuration vs transient) and paired with an operator hint.
//
// Integrations with remote services live in subpackages such as radarr.
package services

// Package config loads, normalizes, and validates prunarr configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RADARR_API_KEY. Section rules are expressed with ozzo-validation so errors
// name the offending key.
//
// The Radarr API key is never written back out: the embedded sample leaves it
// blank and points at the environment instead.
package config

// Package radarr is a minimal Radarr v3 API client covering catalog listing,
// movie deletion, and the system status probe.
//
// Requests authenticate with the X-Api-Key header and can be paced with a
// token-bucket limiter. Non-2xx responses surface as *StatusError, which
// unwraps to the shared markers in package services (404 -> ErrNotFound,
// 401/403 -> ErrConfiguration).
package radarr

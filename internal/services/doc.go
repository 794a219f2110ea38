// Package services defines shared utilities consumed by the library, store,
// and suggestion packages and by the external API clients.
//
// Key responsibilities:
//   - Context helpers that stamp operation names and correlation identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper so every layer reports
//     failures the same way (unavailable upstream vs not found vs invalid
//     input) and callers can branch with errors.Is.
//
// Use these helpers when wiring new clients so error classification and
// observability stay uniform across the application.
package services

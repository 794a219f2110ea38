// Package omdb is the metadata client: free-text search, exact title lookup
// with a search fallback, and full-detail fetches against an OMDb-style API.
//
// Requests are paced by a token bucket and guarded by a circuit breaker. Any
// transport or provider failure surfaces as services.ErrUnavailable, while a
// "not found" answer is an empty result.
package omdb

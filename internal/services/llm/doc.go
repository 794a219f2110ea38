// Package llm provides an OpenRouter-compatible chat completion client.
//
// The recommend package builds movie suggestion prompts on top of it; this
// package knows nothing about movies.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts at a given temperature, receive
// the raw model content.
// Client.HealthCheck: verify the key, model and endpoint answer; used by
// `cinelist config validate --check-services`.
// StripCodeFence / SummarizeSnippet: helpers for reading model output.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). A Retry-After header replaces the backoff, clamped to
// the same maximum. Context cancellation aborts retries immediately.
package llm

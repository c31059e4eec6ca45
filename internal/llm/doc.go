// Package llm wraps an OpenAI-compatible chat-completions endpoint as the
// pipeline's analysis invoker.
//
// Invoke sends a fully rendered prompt plus a JSON Schema and returns the
// model's structured result. Failures are typed (rate limited, invalid
// request, auth, server, malformed response) so callers can distinguish
// retryable conditions; the client itself retries rate limits, server
// errors, and malformed replies with exponential backoff up to a fixed
// attempt cap. Invalid requests and auth failures are never retried.
package llm

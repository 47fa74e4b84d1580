// Package httpclient is the outbound HTTP client shared by the integration
// providers (OAuth token exchange, Stripe, HandCash, embed probing).
//
// Requests go through a token-bucket limiter and a per-remote circuit
// breaker, carry the caller's trace headers, and retry transient transport
// failures via go-retryablehttp.
package httpclient

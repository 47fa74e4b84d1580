// Package tracing provides lightweight request tracing.
//
// Inbound requests get a trace id (taken from X-Trace-ID when present), every
// span is logged through zap when finished, and outbound integration calls
// carry the context onward with Inject.
package tracing

// Package middleware holds the shell's HTTP middleware.
//
// CORS wraps gin-contrib/cors; apps served from other origins call the
// shell API directly. RateLimit keeps a token bucket per client IP and
// evicts buckets for clients that go quiet.
//
//	router.Use(middleware.CORS(middleware.CORSForOrigins(origins)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware

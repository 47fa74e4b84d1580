// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Components receive a *zap.Logger and name it after themselves
// (logger.Named("windows")). A nil logger is replaced with a no-op one via
// OrNop, so constructors never need to nil-check at call sites.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	router.Use(logging.Middleware(logger.Named("http")))
package logging

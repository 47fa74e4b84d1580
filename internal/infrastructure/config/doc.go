// Package config provides 12-factor configuration management for the shell backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// cmd/server loads an optional .env file first and lets CLI flags override.
//
// Configuration Sections:
//   - Server: HTTP listener, public URL, timeouts
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting
//   - Desktop: viewport, top inset reserved for the menu bar, window sizes
//   - Apps: NODE_ENV and an optional directory of app descriptor files
//   - Storage: sqlite database path (empty keeps state in memory)
//   - Auth, OAuth, Stripe, SMTP: integration credentials. A missing
//     credential disables the matching route with 503 instead of failing startup.
//   - PWA: static asset directory and service worker cache name
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
package config

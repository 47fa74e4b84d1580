// Package registry is the static catalog of bApps the shell can launch.
//
// The catalog is assembled once at startup from the built-in Defaults plus
// optional descriptor files (yaml, toml, json or jsonc) and is read-only
// afterwards. Each app resolves to a local dev server URL in development
// and to its hosted URL in production.
//
// Example Usage:
//
//	reg, err := registry.Build(registry.ParseEnvironment(os.Getenv("NODE_ENV")), cfg.Apps.ConfigDir, logger)
//	url, err := reg.Resolve("wallet")
package registry

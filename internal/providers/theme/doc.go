// Package theme is the "theme" integration service. It keeps built-in and
// custom presets, applies the active theme through the bridge hub, and
// persists both so the shell comes back with the same appearance.
package theme

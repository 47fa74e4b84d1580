// Package pwa makes the shell installable: it renders the service worker
// and the web app manifest.
//
// The worker precaches the shell routes and every static asset found by a
// doublestar glob, serves cache-first with network fallback, and never
// intercepts /api/ requests.
package pwa

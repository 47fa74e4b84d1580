// Package http exposes the shell over gin: the app catalog, window
// commands, dock views, sessions, the integration dispatcher at
// POST /api/:service, OAuth and Stripe callbacks, drive uploads, the
// bridge websocket and the PWA assets.
//
// Service results are flattened into the response body:
//
//	{"success": true, ...data}
//	{"success": false, "error": "..."}
package http

// Package ws hosts the bridge hub: the server side of the postMessage
// channel between the shell and each embedded bApp.
//
// Each window has at most one host connection and one app connection.
// Frames are decoded into bridge messages; malformed or unknown frames and
// frames with no peer attached are dropped without reply. app-ready is
// answered with os-config, and a theme-change from any host is applied
// and broadcast to every app.
package ws

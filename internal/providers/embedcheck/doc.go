// Package embedcheck implements the cannot-embed heuristic for app windows.
//
// An app is not embeddable when its response forbids framing by the shell
// through X-Frame-Options, a Content-Security-Policy frame-ancestors
// directive, or the same directive in a <meta http-equiv> tag. The window
// manager then shows the open-in-new-tab fallback.
package embedcheck

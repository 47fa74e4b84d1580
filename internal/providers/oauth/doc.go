// Package oauth signs users in through GitHub, Google, Twitter (X) and
// HandCash Connect.
//
// Begin returns the vendor URL plus the state (and, for PKCE vendors, the
// code verifier) that the HTTP layer keeps in HTTP-only cookies. Complete
// exchanges the callback code server side and normalizes the vendor
// profile with gjson paths.
package oauth

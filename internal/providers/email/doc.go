// Package email sends mail for bApps through an SMTP relay (go-mail).
// HTML bodies pass through a bluemonday UGC policy before sending.
package email

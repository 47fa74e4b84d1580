// Package drive stores files uploaded by bApps. Content types are sniffed
// from the bytes with mimetype rather than trusted from the client.
package drive

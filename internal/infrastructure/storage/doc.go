// Package storage persists shell state: saved desktop sessions, the wallet
// key vault, drive files, revoked auth tokens and checkout records.
//
// Store is a bucketed key/value interface with two implementations: SQLite
// (modernc.org/sqlite, pure Go) for durable state and Memory for tests and
// for running without a data directory.
package storage

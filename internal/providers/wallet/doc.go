// Package wallet manages Bitcoin SV identities for the shell.
//
// Private keys never leave the vault unencrypted: each is sealed with
// AES-256-GCM under a PBKDF2-SHA256 key derived from the caller's
// passphrase or the vault secret. Addresses are mainnet P2PKH
// (base58check of RIPEMD160(SHA256(pubkey))). Message signatures are DER
// ECDSA over sha256(message), the same scheme the auth provider verifies.
package wallet

// Package auth implements wallet login for the shell.
//
// A client asks for a challenge, signs sha256(challenge) with its
// secp256k1 key and posts the DER signature with its public key. A valid
// signature over an outstanding challenge consumes the challenge and yields
// an HS256 session token. Logged-out token ids are persisted so revocation
// survives restarts.
package auth

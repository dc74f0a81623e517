// Package auth holds the account and token domain types shared across the
// registry, plus token issuance and password hashing.
//
// Tokens are opaque bearer credentials: a random value with a recognizable
// prefix, stored only as a SHA-256 hash. The plaintext value is returned to
// the caller exactly once at issuance.
package auth

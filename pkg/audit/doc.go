// Package audit records security-relevant account and token events as a
// structured append-only trail, separate from the operational logs.
//
// # Event Types
//
// Authentication: auth.login, auth.login_failed
// Accounts: account.created
// Tokens: token.issued, token.rejected
//
// Entries carry the username, account ID, and client address where known.
// Token values never reach the trail; only the display prefix is recorded.
package audit

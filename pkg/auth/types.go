package auth

import (
	"errors"
	"time"
)

// ErrInvalidCredential is returned for every bearer credential failure:
// missing, malformed, unknown, expired, or lacking the required scope.
// Callers must not be able to tell which aspect failed.
var ErrInvalidCredential = errors.New("invalid credential")

// Account represents a registry user account.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scope represents a capability label carried by a token.
type Scope string

const (
	ScopeRead    Scope = "read"    // Can read packages and introspect identity
	ScopePublish Scope = "publish" // Can publish package versions
	ScopeAll     Scope = "*"       // All capabilities (for admin tokens)
)

// Token is an issued bearer token. The plaintext value is never stored;
// only its SHA-256 hash and a short display prefix are persisted.
type Token struct {
	AccountID   string     `json:"account_id"`
	TokenHash   string     `json:"-"`
	TokenPrefix string     `json:"token_prefix"`
	Scopes      []Scope    `json:"scopes"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

// HasScope checks if the token carries a specific scope.
func (t *Token) HasScope(scope Scope) bool {
	for _, s := range t.Scopes {
		if s == ScopeAll || s == scope {
			return true
		}
	}
	return false
}

// Expired reports whether the token is past its expiry at the given time.
// Tokens without an expiry never expire.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// LoginCode tags the outcome of a credential lookup.
type LoginCode int

const (
	// LoginSuccess means the account exists and the password matched.
	LoginSuccess LoginCode = iota
	// LoginFail means the account exists but the password did not match.
	LoginFail
	// LoginUserNotFound means no account with that name exists.
	LoginUserNotFound
)

func (c LoginCode) String() string {
	switch c {
	case LoginSuccess:
		return "success"
	case LoginFail:
		return "fail"
	case LoginUserNotFound:
		return "user_not_found"
	default:
		return "unknown"
	}
}

// LoginResult is the tagged outcome produced by a credential lookup.
// Account is set only for LoginSuccess. Consumers must switch on Code
// exhaustively and treat unknown codes as an internal error.
type LoginResult struct {
	Code    LoginCode
	Account *Account
}

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/wharfhq/wharf/pkg/auth"
)

var (
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNameTaken is returned by CreateAccount when another account
	// already holds the name. Exactly one of N concurrent creations for
	// the same name succeeds; the rest get this error.
	ErrNameTaken = errors.New("account name already taken")
	// ErrTokenNotFound is returned when no token matches the hash.
	ErrTokenNotFound = errors.New("token not found")
)

// AccountRecord couples an account with its stored credential hash.
// The hash never leaves the storage and gateway layers.
type AccountRecord struct {
	Account      auth.Account
	PasswordHash string
	CreatedFrom  string // client address recorded at creation
}

// AccountStore provides account lookup and creation.
type AccountStore interface {
	GetAccountByName(ctx context.Context, name string) (*AccountRecord, error)
	GetAccountByID(ctx context.Context, id string) (*auth.Account, error)
	// CreateAccount atomically creates the account if the name is absent,
	// returning ErrNameTaken if another account holds it.
	CreateAccount(ctx context.Context, record *AccountRecord) error
}

// TokenStore persists issued tokens, keyed by their SHA-256 hash.
type TokenStore interface {
	InsertToken(ctx context.Context, token *auth.Token) error
	GetTokenByHash(ctx context.Context, hash string) (*auth.Token, error)
	TouchToken(ctx context.Context, hash string, usedAt time.Time) error
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// Store combines the account and token stores of a single backend.
type Store interface {
	AccountStore
	TokenStore
	Close() error
}

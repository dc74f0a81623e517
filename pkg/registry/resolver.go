package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wharfhq/wharf/pkg/audit"
	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/storage"
)

// TokenResolver resolves a bearer credential to an account for the
// introspection endpoint. Every credential failure maps to
// auth.ErrInvalidCredential so callers cannot tell a missing token from a
// bad one, an expired one, or a missing scope. Infrastructure failures are
// wrapped and returned as-is.
type TokenResolver struct {
	tokens   storage.TokenStore
	accounts storage.AccountStore
	audit    audit.Logger
	now      func() time.Time
}

// NewTokenResolver creates a resolver over the given stores.
func NewTokenResolver(tokens storage.TokenStore, accounts storage.AccountStore, trail audit.Logger) *TokenResolver {
	return &TokenResolver{
		tokens:   tokens,
		accounts: accounts,
		audit:    trail,
		now:      time.Now,
	}
}

// Resolve checks the credential and required scope and returns the
// account it is bound to.
func (r *TokenResolver) Resolve(ctx context.Context, credential string, scope auth.Scope, clientAddr string) (*auth.Account, error) {
	if credential == "" {
		r.audit.CredentialRejected(clientAddr, "missing credential")
		return nil, auth.ErrInvalidCredential
	}

	if err := auth.ValidateTokenFormat(credential); err != nil {
		r.audit.CredentialRejected(clientAddr, "malformed credential")
		return nil, auth.ErrInvalidCredential
	}

	hash := auth.HashToken(credential)

	token, err := r.tokens.GetTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			r.audit.CredentialRejected(clientAddr, "unknown token")
			return nil, auth.ErrInvalidCredential
		}
		return nil, fmt.Errorf("token lookup: %w", err)
	}

	if token.Expired(r.now()) {
		r.audit.CredentialRejected(clientAddr, "expired token")
		return nil, auth.ErrInvalidCredential
	}

	if !token.HasScope(scope) {
		r.audit.CredentialRejected(clientAddr, "insufficient scope")
		return nil, auth.ErrInvalidCredential
	}

	account, err := r.accounts.GetAccountByID(ctx, token.AccountID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			r.audit.CredentialRejected(clientAddr, "orphaned token")
			return nil, auth.ErrInvalidCredential
		}
		return nil, fmt.Errorf("account lookup: %w", err)
	}

	// Best effort; a failed touch must not fail the introspection
	_ = r.tokens.TouchToken(ctx, hash, r.now().UTC())

	return account, nil
}

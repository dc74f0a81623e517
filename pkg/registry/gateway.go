package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/storage"
)

// StoreGateway authenticates against an account store. It is the only
// component that sees password hashes.
type StoreGateway struct {
	accounts storage.AccountStore
}

// NewStoreGateway creates a gateway over the given account store.
func NewStoreGateway(accounts storage.AccountStore) *StoreGateway {
	return &StoreGateway{accounts: accounts}
}

// Login resolves a name/password pair to one of the three lookup outcomes.
// Infrastructure failures are returned as errors, never folded into an
// outcome code.
func (g *StoreGateway) Login(ctx context.Context, name, password string) (auth.LoginResult, error) {
	record, err := g.accounts.GetAccountByName(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return auth.LoginResult{Code: auth.LoginUserNotFound}, nil
		}
		return auth.LoginResult{}, fmt.Errorf("account lookup: %w", err)
	}

	if !auth.CheckPassword(record.PasswordHash, password) {
		return auth.LoginResult{Code: auth.LoginFail}, nil
	}

	account := record.Account
	return auth.LoginResult{Code: auth.LoginSuccess, Account: &account}, nil
}

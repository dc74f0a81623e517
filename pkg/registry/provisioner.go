package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/storage"
)

// StoreProvisioner creates accounts in an account store. Name uniqueness
// is enforced by the store's atomic create-if-absent contract, not here.
type StoreProvisioner struct {
	accounts storage.AccountStore
	now      func() time.Time
}

// NewStoreProvisioner creates a provisioner over the given account store.
func NewStoreProvisioner(accounts storage.AccountStore) *StoreProvisioner {
	return &StoreProvisioner{
		accounts: accounts,
		now:      time.Now,
	}
}

// Create hashes the password and creates the account. Returns
// storage.ErrNameTaken unwrapped when the name is already held, so the
// engine can route it to the retry path.
func (p *StoreProvisioner) Create(ctx context.Context, name, password, email, clientAddr string) (*auth.Account, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("password hashing: %w", err)
	}

	now := p.now().UTC()
	record := &storage.AccountRecord{
		Account: auth.Account{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: passwordHash,
		CreatedFrom:  clientAddr,
	}

	if err := p.accounts.CreateAccount(ctx, record); err != nil {
		return nil, err
	}

	account := record.Account
	return &account, nil
}

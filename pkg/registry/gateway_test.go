package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/storage"
)

func seedAccount(t *testing.T, store storage.AccountStore, name, password string) *auth.Account {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	record := &storage.AccountRecord{
		Account: auth.Account{
			ID:   "acct-" + name,
			Name: name,
		},
		PasswordHash: hash,
	}
	require.NoError(t, store.CreateAccount(context.Background(), record))
	return &record.Account
}

func TestGatewayLoginSuccess(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAccount(t, store, "alice", "longenough1")
	gateway := NewStoreGateway(store)

	result, err := gateway.Login(context.Background(), "alice", "longenough1")
	require.NoError(t, err)

	assert.Equal(t, auth.LoginSuccess, result.Code)
	require.NotNil(t, result.Account)
	assert.Equal(t, "alice", result.Account.Name)
}

func TestGatewayLoginWrongPassword(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAccount(t, store, "alice", "longenough1")
	gateway := NewStoreGateway(store)

	result, err := gateway.Login(context.Background(), "alice", "wrongpassword")
	require.NoError(t, err)

	assert.Equal(t, auth.LoginFail, result.Code)
	assert.Nil(t, result.Account)
}

func TestGatewayLoginUnknownName(t *testing.T) {
	gateway := NewStoreGateway(storage.NewMemoryStore())

	result, err := gateway.Login(context.Background(), "nobody", "longenough1")
	require.NoError(t, err)

	assert.Equal(t, auth.LoginUserNotFound, result.Code)
	assert.Nil(t, result.Account)
}

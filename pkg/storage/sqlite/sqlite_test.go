package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "wharf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(id, name string) *storage.AccountRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return &storage.AccountRecord{
		Account: auth.Account{
			ID:        id,
			Name:      name,
			Email:     name + "@example.com",
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: "hash-" + name,
		CreatedFrom:  "127.0.0.1",
	}
}

func TestAccountRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetAccountByName(ctx, "alice")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)

	require.NoError(t, store.CreateAccount(ctx, record("id-1", "alice")))

	got, err := store.GetAccountByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.Account.ID)
	assert.Equal(t, "alice@example.com", got.Account.Email)
	assert.Equal(t, "hash-alice", got.PasswordHash)
	assert.Equal(t, "127.0.0.1", got.CreatedFrom)

	account, err := store.GetAccountByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Name)
}

func TestCreateAccountConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateAccount(ctx, record("id-1", "bob")))
	err := store.CreateAccount(ctx, record("id-2", "bob"))
	assert.ErrorIs(t, err, storage.ErrNameTaken)

	got, err := store.GetAccountByName(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.Account.ID, "the first creation must survive")
}

func TestCreateAccountConcurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs[n] = store.CreateAccount(ctx, record(string(rune('a'+n))+"-id", "carol"))
		}(i)
	}
	wg.Wait()

	var winners int
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, storage.ErrNameTaken)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateAccount(ctx, record("id-1", "alice")))

	now := time.Now().UTC().Truncate(time.Second)
	expires := now.Add(time.Hour)
	token := &auth.Token{
		TokenHash:   "hash-1",
		TokenPrefix: "wharf_abc",
		AccountID:   "id-1",
		Scopes:      []auth.Scope{auth.ScopeRead, auth.ScopePublish},
		CreatedAt:   now,
		ExpiresAt:   &expires,
	}
	require.NoError(t, store.InsertToken(ctx, token))

	got, err := store.GetTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.AccountID)
	assert.Equal(t, []auth.Scope{auth.ScopeRead, auth.ScopePublish}, got.Scopes)
	require.NotNil(t, got.ExpiresAt)
	assert.Nil(t, got.LastUsedAt)

	used := now.Add(time.Minute)
	require.NoError(t, store.TouchToken(ctx, "hash-1", used))
	got, err = store.GetTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastUsedAt)

	assert.ErrorIs(t, store.TouchToken(ctx, "missing", used), storage.ErrTokenNotFound)
}

func TestDeleteExpiredTokens(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateAccount(ctx, record("id-1", "alice")))

	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	require.NoError(t, store.InsertToken(ctx, &auth.Token{TokenHash: "expired", TokenPrefix: "wharf_a", AccountID: "id-1", Scopes: []auth.Scope{auth.ScopeRead}, CreatedAt: past, ExpiresAt: &past}))
	require.NoError(t, store.InsertToken(ctx, &auth.Token{TokenHash: "live", TokenPrefix: "wharf_b", AccountID: "id-1", Scopes: []auth.Scope{auth.ScopeRead}, CreatedAt: now, ExpiresAt: &future}))
	require.NoError(t, store.InsertToken(ctx, &auth.Token{TokenHash: "forever", TokenPrefix: "wharf_c", AccountID: "id-1", Scopes: []auth.Scope{auth.ScopeRead}, CreatedAt: now}))

	removed, err := store.DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = store.GetTokenByHash(ctx, "expired")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	_, err = store.GetTokenByHash(ctx, "live")
	assert.NoError(t, err)
	_, err = store.GetTokenByHash(ctx, "forever")
	assert.NoError(t, err)
}

package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharfhq/wharf/pkg/audit"
	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/storage"
)

func issueTestToken(t *testing.T, store storage.TokenStore, accountID string, scopes []auth.Scope, ttl time.Duration) string {
	t.Helper()
	issuer := auth.NewIssuer(store, ttl)
	_, value, err := issuer.Issue(context.Background(), accountID, scopes)
	require.NoError(t, err)
	return value
}

func TestResolverSuccess(t *testing.T) {
	store := storage.NewMemoryStore()
	account := seedAccount(t, store, "alice", "longenough1")
	value := issueTestToken(t, store, account.ID, []auth.Scope{auth.ScopeRead}, 0)

	resolver := NewTokenResolver(store, store, audit.NopLogger{})

	resolved, err := resolver.Resolve(context.Background(), value, auth.ScopeRead, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Name)
}

func TestResolverFailuresAreIndistinguishable(t *testing.T) {
	store := storage.NewMemoryStore()
	account := seedAccount(t, store, "alice", "longenough1")

	expiredValue := issueTestToken(t, store, account.ID, []auth.Scope{auth.ScopeRead}, time.Nanosecond)
	scopelessValue := issueTestToken(t, store, account.ID, []auth.Scope{auth.ScopePublish}, 0)
	orphanValue := issueTestToken(t, store, "acct-gone", []auth.Scope{auth.ScopeRead}, 0)

	time.Sleep(time.Millisecond)

	resolver := NewTokenResolver(store, store, audit.NopLogger{})

	tests := []struct {
		name       string
		credential string
	}{
		{name: "missing", credential: ""},
		{name: "malformed", credential: "not-a-wharf-token"},
		{name: "unknown", credential: "wharf_AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
		{name: "expired", credential: expiredValue},
		{name: "missing scope", credential: scopelessValue},
		{name: "orphaned", credential: orphanValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(context.Background(), tt.credential, auth.ScopeRead, "203.0.113.7")
			// Same sentinel for every failure mode
			assert.ErrorIs(t, err, auth.ErrInvalidCredential)
		})
	}
}

func TestResolverTouchesToken(t *testing.T) {
	store := storage.NewMemoryStore()
	account := seedAccount(t, store, "alice", "longenough1")
	value := issueTestToken(t, store, account.ID, []auth.Scope{auth.ScopeRead}, 0)

	resolver := NewTokenResolver(store, store, audit.NopLogger{})

	_, err := resolver.Resolve(context.Background(), value, auth.ScopeRead, "")
	require.NoError(t, err)

	token, err := store.GetTokenByHash(context.Background(), auth.HashToken(value))
	require.NoError(t, err)
	assert.NotNil(t, token.LastUsedAt)
}

func TestResolverWildcardScope(t *testing.T) {
	store := storage.NewMemoryStore()
	account := seedAccount(t, store, "alice", "longenough1")
	value := issueTestToken(t, store, account.ID, []auth.Scope{auth.ScopeAll}, 0)

	resolver := NewTokenResolver(store, store, audit.NopLogger{})

	resolved, err := resolver.Resolve(context.Background(), value, auth.ScopeRead, "")
	require.NoError(t, err)
	assert.Equal(t, account.ID, resolved.ID)
}

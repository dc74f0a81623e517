package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenHasScope(t *testing.T) {
	token := &Token{Scopes: []Scope{ScopeRead}}
	assert.True(t, token.HasScope(ScopeRead))
	assert.False(t, token.HasScope(ScopePublish))

	admin := &Token{Scopes: []Scope{ScopeAll}}
	assert.True(t, admin.HasScope(ScopeRead))
	assert.True(t, admin.HasScope(ScopePublish))
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	forever := &Token{}
	assert.False(t, forever.Expired(now.Add(100*24*time.Hour)))

	expires := now.Add(time.Minute)
	short := &Token{ExpiresAt: &expires}
	assert.False(t, short.Expired(now))
	assert.True(t, short.Expired(now.Add(2*time.Minute)))
}

func TestLoginCodeString(t *testing.T) {
	assert.Equal(t, "success", LoginSuccess.String())
	assert.Equal(t, "fail", LoginFail.String())
	assert.Equal(t, "user_not_found", LoginUserNotFound.String())
	assert.Equal(t, "unknown", LoginCode(42).String())
}

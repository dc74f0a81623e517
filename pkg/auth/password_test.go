package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("longenough1")
	require.NoError(t, err)
	assert.NotEqual(t, "longenough1", hash)

	assert.True(t, CheckPassword(hash, "longenough1"))
	assert.False(t, CheckPassword(hash, "wrongpassword"))
	assert.False(t, CheckPassword("", "longenough1"))
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	h1, err := HashPassword("longenough1")
	require.NoError(t, err)
	h2, err := HashPassword("longenough1")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

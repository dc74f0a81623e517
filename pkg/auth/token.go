package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	// TokenPrefix identifies wharf tokens
	TokenPrefix = "wharf_"
	// TokenLength is the number of random bytes per token (32 bytes = 256 bits)
	TokenLength = 32
)

// GenerateToken creates a new bearer token value.
// Format: wharf_<base64url(32 random bytes)>
func GenerateToken() (token string, tokenHash string, tokenPrefix string, err error) {
	randomBytes := make([]byte, TokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(randomBytes)
	fullToken := TokenPrefix + encoded

	hash := sha256.Sum256([]byte(fullToken))

	// First 8 chars after the prefix are kept for display and lookup hints
	prefix := TokenPrefix
	if len(encoded) >= 8 {
		prefix = TokenPrefix + encoded[:8]
	}

	return fullToken, hex.EncodeToString(hash[:]), prefix, nil
}

// HashToken computes the SHA-256 hash of a token for storage lookup.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidateTokenFormat checks if a token has the correct shape before any
// storage lookup is attempted.
func ValidateTokenFormat(token string) error {
	if !strings.HasPrefix(token, TokenPrefix) {
		return fmt.Errorf("token must start with %q", TokenPrefix)
	}

	encoded := strings.TrimPrefix(token, TokenPrefix)
	if encoded == "" {
		return fmt.Errorf("token is too short")
	}

	if _, err := base64.RawURLEncoding.DecodeString(encoded); err != nil {
		return fmt.Errorf("invalid token encoding: %w", err)
	}

	return nil
}

// TokenSink persists issued tokens.
type TokenSink interface {
	InsertToken(ctx context.Context, token *Token) error
}

// Issuer mints bearer tokens bound to a single account. Every call
// produces a unique value; the plaintext is returned once and never stored.
type Issuer struct {
	sink TokenSink
	ttl  time.Duration // zero means tokens never expire
	now  func() time.Time
}

// NewIssuer creates a token issuer writing to the given sink.
func NewIssuer(sink TokenSink, ttl time.Duration) *Issuer {
	return &Issuer{
		sink: sink,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Issue mints a token for the account and persists its hash.
// The second return value is the plaintext token, visible only here.
func (i *Issuer) Issue(ctx context.Context, accountID string, scopes []Scope) (*Token, string, error) {
	value, tokenHash, tokenPrefix, err := GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := &Token{
		AccountID:   accountID,
		TokenHash:   tokenHash,
		TokenPrefix: tokenPrefix,
		Scopes:      append([]Scope(nil), scopes...),
		CreatedAt:   i.now().UTC(),
	}
	if i.ttl > 0 {
		expires := token.CreatedAt.Add(i.ttl)
		token.ExpiresAt = &expires
	}

	if err := i.sink.InsertToken(ctx, token); err != nil {
		return nil, "", fmt.Errorf("failed to store token: %w", err)
	}

	return token, value, nil
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wharfhq/wharf/pkg/auth"
)

// TokenCache layers an in-process LRU (L1) and an optional Redis cache
// (L2) over a TokenStore. Token resolution happens on every authenticated
// request, so the hot path should rarely reach the backing store.
type TokenCache struct {
	store TokenStore
	l1    *lru.Cache[string, *auth.Token]
	redis *redis.Client
	ttl   time.Duration
}

// NewTokenCache creates a token cache over the given store. redisClient
// may be nil, in which case only the L1 cache is used.
func NewTokenCache(store TokenStore, redisClient *redis.Client, l1Size int, ttl time.Duration) (*TokenCache, error) {
	if l1Size <= 0 {
		l1Size = 1024
	}
	l1, err := lru.New[string, *auth.Token](l1Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create L1 token cache: %w", err)
	}

	return &TokenCache{
		store: store,
		l1:    l1,
		redis: redisClient,
		ttl:   ttl,
	}, nil
}

func tokenCacheKey(hash string) string {
	return "token:" + hash
}

// InsertToken writes through to the store and primes both cache layers.
func (c *TokenCache) InsertToken(ctx context.Context, token *auth.Token) error {
	if err := c.store.InsertToken(ctx, token); err != nil {
		return err
	}

	c.l1.Add(token.TokenHash, token)
	if c.redis != nil {
		if data, err := json.Marshal(token); err == nil {
			c.redis.Set(ctx, tokenCacheKey(token.TokenHash), data, c.ttl)
		}
	}
	return nil
}

// GetTokenByHash checks L1, then Redis, then the backing store. Cache
// layers are refilled on the way back up.
func (c *TokenCache) GetTokenByHash(ctx context.Context, hash string) (*auth.Token, error) {
	if token, ok := c.l1.Get(hash); ok {
		return token, nil
	}

	if c.redis != nil {
		data, err := c.redis.Get(ctx, tokenCacheKey(hash)).Result()
		if err == nil {
			var token auth.Token
			if err := json.Unmarshal([]byte(data), &token); err == nil {
				token.TokenHash = hash
				c.l1.Add(hash, &token)
				return &token, nil
			}
			// Corrupt entry, drop it and fall through to the store
			c.redis.Del(ctx, tokenCacheKey(hash))
		}
		// A miss or a Redis transport error both degrade to a store lookup
	}

	token, err := c.store.GetTokenByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	c.l1.Add(hash, token)
	if c.redis != nil {
		if data, err := json.Marshal(token); err == nil {
			c.redis.Set(ctx, tokenCacheKey(hash), data, c.ttl)
		}
	}
	return token, nil
}

// TouchToken passes through to the store without invalidating caches;
// last-used time is advisory and not part of resolution decisions.
func (c *TokenCache) TouchToken(ctx context.Context, hash string, usedAt time.Time) error {
	return c.store.TouchToken(ctx, hash, usedAt)
}

// DeleteExpiredTokens purges the store and drops both cache layers.
// Expiry is checked on every resolution anyway, so stale cache entries
// cannot extend a token's life; purging just frees memory promptly.
func (c *TokenCache) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	removed, err := c.store.DeleteExpiredTokens(ctx, now)
	if err != nil {
		return removed, err
	}

	c.l1.Purge()
	return removed, nil
}

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/wharfhq/wharf/pkg/auth"
)

// MemoryStore is an in-process Store used for tests and dev runs.
// All data is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*AccountRecord // keyed by name
	byID     map[string]string         // account ID -> name
	tokens   map[string]*auth.Token    // keyed by token hash
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*AccountRecord),
		byID:     make(map[string]string),
		tokens:   make(map[string]*auth.Token),
	}
}

// GetAccountByName returns the record for the given account name.
func (s *MemoryStore) GetAccountByName(_ context.Context, name string) (*AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.accounts[name]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copied := *record
	return &copied, nil
}

// GetAccountByID returns the account with the given identifier.
func (s *MemoryStore) GetAccountByID(_ context.Context, id string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	account := s.accounts[name].Account
	return &account, nil
}

// CreateAccount inserts the record if the name is absent. The single lock
// makes the check-and-insert atomic, so concurrent creations for the same
// name resolve to exactly one winner.
func (s *MemoryStore) CreateAccount(_ context.Context, record *AccountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[record.Account.Name]; exists {
		return ErrNameTaken
	}
	copied := *record
	s.accounts[record.Account.Name] = &copied
	s.byID[record.Account.ID] = record.Account.Name
	return nil
}

// InsertToken stores an issued token by its hash.
func (s *MemoryStore) InsertToken(_ context.Context, token *auth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *token
	s.tokens[token.TokenHash] = &copied
	return nil
}

// GetTokenByHash returns the token with the given hash.
func (s *MemoryStore) GetTokenByHash(_ context.Context, hash string) (*auth.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[hash]
	if !ok {
		return nil, ErrTokenNotFound
	}
	copied := *token
	return &copied, nil
}

// TouchToken records the last time a token was used.
func (s *MemoryStore) TouchToken(_ context.Context, hash string, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[hash]
	if !ok {
		return ErrTokenNotFound
	}
	token.LastUsedAt = &usedAt
	return nil
}

// DeleteExpiredTokens removes tokens past their expiry.
func (s *MemoryStore) DeleteExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for hash, token := range s.tokens {
		if token.Expired(now) {
			delete(s.tokens, hash)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

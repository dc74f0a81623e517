// Package sqlite implements the storage contracts on SQLite for
// single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	email        TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_from TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tokens (
	token_hash   TEXT PRIMARY KEY,
	token_prefix TEXT NOT NULL,
	account_id   TEXT NOT NULL REFERENCES accounts(id),
	scopes       TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	expires_at   TIMESTAMP,
	last_used_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tokens_account ON tokens(account_id);
CREATE INDEX IF NOT EXISTS idx_tokens_expires ON tokens(expires_at);
`

// SQLiteStore implements storage.Store backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// churn under concurrent creates while keeping the atomicity contract.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// GetAccountByName returns the record for the given account name.
func (s *SQLiteStore) GetAccountByName(ctx context.Context, name string) (*storage.AccountRecord, error) {
	record := &storage.AccountRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_from, created_at, updated_at
		FROM accounts WHERE name = ?
	`, name).Scan(
		&record.Account.ID,
		&record.Account.Name,
		&record.Account.Email,
		&record.PasswordHash,
		&record.CreatedFrom,
		&record.Account.CreatedAt,
		&record.Account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return record, nil
}

// GetAccountByID returns the account with the given identifier.
func (s *SQLiteStore) GetAccountByID(ctx context.Context, id string) (*auth.Account, error) {
	account := &auth.Account{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM accounts WHERE id = ?
	`, id).Scan(&account.ID, &account.Name, &account.Email, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// CreateAccount inserts the account if the name is absent. INSERT OR
// IGNORE against the name unique constraint makes the check atomic; zero
// affected rows means another account holds the name.
func (s *SQLiteStore) CreateAccount(ctx context.Context, record *storage.AccountRecord) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO accounts (id, name, email, password_hash, created_from, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.Account.ID,
		record.Account.Name,
		record.Account.Email,
		record.PasswordHash,
		record.CreatedFrom,
		record.Account.CreatedAt,
		record.Account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	if affected == 0 {
		return storage.ErrNameTaken
	}
	return nil
}

// InsertToken stores an issued token.
func (s *SQLiteStore) InsertToken(ctx context.Context, token *auth.Token) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (token_hash, token_prefix, account_id, scopes, created_at, expires_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		token.TokenHash,
		token.TokenPrefix,
		token.AccountID,
		storage.JoinScopes(token.Scopes),
		token.CreatedAt,
		token.ExpiresAt,
		token.LastUsedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

// GetTokenByHash returns the token with the given hash.
func (s *SQLiteStore) GetTokenByHash(ctx context.Context, hash string) (*auth.Token, error) {
	token := &auth.Token{TokenHash: hash}
	var scopes string
	err := s.db.QueryRowContext(ctx, `
		SELECT token_prefix, account_id, scopes, created_at, expires_at, last_used_at
		FROM tokens WHERE token_hash = ?
	`, hash).Scan(&token.TokenPrefix, &token.AccountID, &scopes, &token.CreatedAt, &token.ExpiresAt, &token.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	token.Scopes = storage.SplitScopes(scopes)
	return token, nil
}

// TouchToken records the last time a token was used.
func (s *SQLiteStore) TouchToken(ctx context.Context, hash string, usedAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tokens SET last_used_at = ? WHERE token_hash = ?
	`, usedAt, hash)
	if err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}
	if affected == 0 {
		return storage.ErrTokenNotFound
	}
	return nil
}

// DeleteExpiredTokens removes tokens past their expiry.
func (s *SQLiteStore) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM tokens WHERE expires_at IS NOT NULL AND expires_at < ?
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected()
}

// DB exposes the underlying handle for health checks.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

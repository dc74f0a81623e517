// Package postgres implements the storage contracts on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/storage"
)

// PostgresStore implements storage.Store backed by PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	config storage.Config
}

// NewPostgresStore connects to PostgreSQL and prepares the schema.
func NewPostgresStore(config storage.Config) (*PostgresStore, error) {
	db, err := sql.Open("postgres", config.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(config.PostgresMaxConns)
	db.SetMaxIdleConns(config.PostgresMinConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), config.PostgresTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store := &PostgresStore{db: db, config: config}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_from  TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tokens (
			token_hash   TEXT PRIMARY KEY,
			token_prefix TEXT NOT NULL,
			account_id   TEXT NOT NULL REFERENCES accounts(id),
			scopes       TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL,
			expires_at   TIMESTAMPTZ,
			last_used_at TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_tokens_account ON tokens(account_id);
		CREATE INDEX IF NOT EXISTS idx_tokens_expires ON tokens(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// GetAccountByName returns the record for the given account name.
func (s *PostgresStore) GetAccountByName(ctx context.Context, name string) (*storage.AccountRecord, error) {
	record := &storage.AccountRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_from, created_at, updated_at
		FROM accounts WHERE name = $1
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
func (s *PostgresStore) GetAccountByID(ctx context.Context, id string) (*auth.Account, error) {
	account := &auth.Account{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&account.ID, &account.Name, &account.Email, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// CreateAccount inserts the account if the name is absent. ON CONFLICT
// DO NOTHING against the name unique constraint makes the check atomic;
// zero affected rows means another account holds the name.
func (s *PostgresStore) CreateAccount(ctx context.Context, record *storage.AccountRecord) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, email, password_hash, created_from, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO NOTHING
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
func (s *PostgresStore) InsertToken(ctx context.Context, token *auth.Token) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (token_hash, token_prefix, account_id, scopes, created_at, expires_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
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
func (s *PostgresStore) GetTokenByHash(ctx context.Context, hash string) (*auth.Token, error) {
	token := &auth.Token{TokenHash: hash}
	var scopes string
	err := s.db.QueryRowContext(ctx, `
		SELECT token_prefix, account_id, scopes, created_at, expires_at, last_used_at
		FROM tokens WHERE token_hash = $1
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
func (s *PostgresStore) TouchToken(ctx context.Context, hash string, usedAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tokens SET last_used_at = $1 WHERE token_hash = $2
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
func (s *PostgresStore) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM tokens WHERE expires_at IS NOT NULL AND expires_at < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected()
}

// DB exposes the underlying handle for health checks.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

package postgres

import (
	"context"
	"fmt"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// AccountStore implements storage.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *Pool
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(pool *Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AccountStore = (*AccountStore)(nil)

// Upsert inserts or refreshes an account record.
func (s *AccountStore) Upsert(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (name, created, reputation, public_key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			reputation = EXCLUDED.reputation,
			public_key = EXCLUDED.public_key,
			updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query, a.Name, a.Created, a.Reputation, a.PublicKey)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

// GetByName retrieves an account.
func (s *AccountStore) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	query := `
		SELECT name, created, reputation, public_key
		FROM accounts
		WHERE name = $1
	`

	var a domain.Account
	err := s.pool.QueryRow(ctx, query, name).Scan(&a.Name, &a.Created, &a.Reputation, &a.PublicKey)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get account by name: %w", err)
	}
	return &a, nil
}

package postgres

import (
	"context"
	"fmt"

	"steem-curation-lab/internal/domain"
	"steem-curation-lab/internal/storage"
)

// BeneficiaryStore implements storage.BeneficiaryStore using PostgreSQL.
type BeneficiaryStore struct {
	pool *Pool
}

// NewBeneficiaryStore creates a new BeneficiaryStore.
func NewBeneficiaryStore(pool *Pool) *BeneficiaryStore {
	return &BeneficiaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BeneficiaryStore = (*BeneficiaryStore)(nil)

// Insert adds a declaration.
func (s *BeneficiaryStore) Insert(ctx context.Context, b *domain.Beneficiary) error {
	query := `
		INSERT INTO beneficiaries (author, permlink, beneficiary, pct)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, b.Author, b.Permlink, b.Beneficiary, b.Pct)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert beneficiary: %w", err)
	}
	return nil
}

// GetByPost retrieves all declarations for a post.
func (s *BeneficiaryStore) GetByPost(ctx context.Context, author, permlink string) ([]*domain.Beneficiary, error) {
	query := `
		SELECT author, permlink, beneficiary, pct
		FROM beneficiaries
		WHERE author = $1 AND permlink = $2
		ORDER BY beneficiary ASC
	`

	rows, err := s.pool.Query(ctx, query, author, permlink)
	if err != nil {
		return nil, fmt.Errorf("get beneficiaries by post: %w", err)
	}
	defer rows.Close()

	var declarations []*domain.Beneficiary
	for rows.Next() {
		var b domain.Beneficiary
		if err := rows.Scan(&b.Author, &b.Permlink, &b.Beneficiary, &b.Pct); err != nil {
			return nil, fmt.Errorf("scan beneficiary row: %w", err)
		}
		declarations = append(declarations, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate beneficiary rows: %w", err)
	}
	return declarations, nil
}

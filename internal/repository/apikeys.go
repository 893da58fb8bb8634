package repository

import (
	"context"
	"fmt"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/google/uuid"
)

// CreateApiKey inserts a new key record. The raw secret is never passed in
// or persisted; only its hash is.
func (r *Repository) CreateApiKey(ctx context.Context, k *domain.ApiKey) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, account_id, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		k.ID, k.Name, k.KeyHash, k.AccountID, k.IsActive, k.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

// FindApiKeyByHash looks up an active key by its hash, the hot path hit on
// every authenticated request.
func (r *Repository) FindApiKeyByHash(ctx context.Context, hash string) (*domain.ApiKey, error) {
	return scanApiKey(r.db.QueryRow(ctx,
		`SELECT id, name, key_hash, account_id, is_active, created_at, last_used_at
		 FROM api_keys WHERE key_hash = $1 AND is_active = true`, hash))
}

// CountApiKeys returns the number of active key records; used solely to
// gate the bootstrap rule, which must reopen once the last active key is
// deactivated.
func (r *Repository) CountApiKeys(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM api_keys WHERE is_active = true`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count api keys: %w", err)
	}
	return count, nil
}

// ListApiKeys returns every active key record, newest first.
func (r *Repository) ListApiKeys(ctx context.Context) ([]*domain.ApiKey, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, key_hash, account_id, is_active, created_at, last_used_at
		 FROM api_keys WHERE is_active = true ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var out []*domain.ApiKey
	for rows.Next() {
		k, err := scanApiKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// DeactivateApiKey soft-deletes a key so it can no longer authenticate.
func (r *Repository) DeactivateApiKey(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE api_keys SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate api key: %w", err)
	}
	return requireExactlyOne(tag.RowsAffected(), "deactivate api key")
}

// TouchApiKeyLastUsed records the current time as the key's last-used
// timestamp. Best-effort: callers should not fail a request over this.
func (r *Repository) TouchApiKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE api_keys SET last_used_at = now() WHERE id = $1`, id)
	return err
}

func scanApiKey(row rowScanner) (*domain.ApiKey, error) {
	var k domain.ApiKey
	if err := row.Scan(&k.ID, &k.Name, &k.KeyHash, &k.AccountID, &k.IsActive, &k.CreatedAt, &k.LastUsedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &k, nil
}

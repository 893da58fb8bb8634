package repository

import (
	"context"
	"fmt"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateAccount inserts a new account row and returns it unmodified.
func (r *Repository) CreateAccount(ctx context.Context, acc *domain.Account) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO accounts (id, name, balance, currency, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		acc.ID, acc.Name, acc.Balance.Amount, acc.Balance.Currency.Code(), acc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetAccount fetches a single account by id.
func (r *Repository) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`SELECT id, name, balance, currency, created_at FROM accounts WHERE id = $1`, id))
}

// ListAccounts returns every account, newest first.
func (r *Repository) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, balance, currency, created_at FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Account
	for rows.Next() {
		acc, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

// LockAccount takes a row-level exclusive lock on an account within an open
// transaction, returning its current balance and currency. Callers must
// acquire locks on multiple accounts in ascending UUID order to avoid
// deadlocking against a concurrent transaction locking the same accounts.
func (r *Repository) LockAccount(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	acc, err := scanAccount(tx.QueryRow(ctx,
		`SELECT id, name, balance, currency, created_at FROM accounts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("lock account %s: %w", id, err)
	}
	return acc, nil
}

// AdjustBalance applies delta (positive or negative) to an account's
// balance within an open transaction. It must be called after LockAccount
// has already taken the row lock.
func (r *Repository) AdjustBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int64) error {
	tag, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return fmt.Errorf("adjust balance for %s: %w", id, err)
	}
	return requireExactlyOne(tag.RowsAffected(), "adjust balance")
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		acc      domain.Account
		amount   int64
		currency string
	)
	if err := row.Scan(&acc.ID, &acc.Name, &amount, &currency, &acc.CreatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	cur, err := domain.ParseCurrency(currency)
	if err != nil {
		return nil, err
	}
	acc.Balance = domain.NewMoney(amount, cur)
	return &acc, nil
}

func scanAccountRow(row rowScanner) (*domain.Account, error) {
	return scanAccount(row)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateTransaction inserts a transaction row within tx.
func (r *Repository) CreateTransaction(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO transactions
		   (id, direction, amount, currency, source_account_id, dest_account_id,
		    idempotency_key, reference, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Direction, t.Amount.Amount, t.Amount.Currency.Code(),
		t.SourceAccountID, t.DestAccountID, t.IdempotencyKey, t.Reference, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// FindByIdempotencyKey looks up a previously completed transaction by its
// caller-supplied idempotency key, used both as a fast pre-check before
// opening a transaction and, on a unique-constraint race, as the read that
// recovers the winner's row.
func (r *Repository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	return scanTransaction(r.db.QueryRow(ctx, transactionSelect+` WHERE idempotency_key = $1`, key))
}

// GetTransaction fetches a single transaction by id.
func (r *Repository) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return scanTransaction(r.db.QueryRow(ctx, transactionSelect+` WHERE id = $1`, id))
}

// ListTransactionsForAccount returns every transaction touching account id,
// as either source or destination, newest first.
func (r *Repository) ListTransactionsForAccount(ctx context.Context, id uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx,
		transactionSelect+` WHERE source_account_id = $1 OR dest_account_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		id, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions for account: %w", err)
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const transactionSelect = `SELECT id, direction, amount, currency, source_account_id,
	dest_account_id, idempotency_key, reference, created_at FROM transactions`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t        domain.Transaction
		amount   int64
		currency string
	)
	if err := row.Scan(&t.ID, &t.Direction, &amount, &currency, &t.SourceAccountID,
		&t.DestAccountID, &t.IdempotencyKey, &t.Reference, &t.CreatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	cur, err := domain.ParseCurrency(currency)
	if err != nil {
		return nil, err
	}
	t.Amount = domain.NewMoney(amount, cur)
	return &t, nil
}

// LockAccountsInOrder locks every distinct account id within tx in
// ascending UUID order, so two concurrent ledger operations touching an
// overlapping set of accounts always request row locks in the same order
// and cannot deadlock against each other.
func (r *Repository) LockAccountsInOrder(ctx context.Context, tx pgx.Tx, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	ordered := dedupeAndSortUUIDs(ids)
	out := make(map[uuid.UUID]*domain.Account, len(ordered))
	for _, id := range ordered {
		acc, err := r.LockAccount(ctx, tx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("account %s not found", id)
			}
			return nil, err
		}
		out[id] = acc
	}
	return out, nil
}

func dedupeAndSortUUIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[i].String() > out[j].String() {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// IsUniqueViolation exposes the package's unique-constraint detection to
// the service layer, which needs it to decide whether a failed ledger
// write lost an idempotency race rather than hit a genuine error.
func IsUniqueViolation(err error) bool {
	return isUniqueViolation(err)
}

// ErrCrossCurrencyTransfer is returned by Transfer when the source and
// destination accounts carry different currencies; cross-currency
// transfers are rejected outright rather than converted.
var ErrCrossCurrencyTransfer = errors.New("cross-currency transfer")

// Deposit credits dest by amount and records a DEPOSIT transaction. If
// idempotencyKey is set and already bound to a prior transaction, that
// transaction is returned unchanged and no balance is touched.
func (r *Repository) Deposit(ctx context.Context, dest uuid.UUID, amount domain.Money, idempotencyKey, reference *string) (*domain.Transaction, error) {
	if existing, err := r.lookupIdempotent(ctx, idempotencyKey); existing != nil || err != nil {
		return existing, err
	}

	t := domain.NewDeposit(dest, amount, idempotencyKey, reference)
	err := r.RunInTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1 WHERE id = $2 AND currency = $3`,
			amount.Amount, dest, amount.Currency.Code())
		if err != nil {
			return fmt.Errorf("credit account: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return r.CreateTransaction(ctx, tx, t)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return r.FindByIdempotencyKey(ctx, *idempotencyKey)
		}
		return nil, err
	}
	return t, nil
}

// Withdraw debits source by amount and records a WITHDRAWAL transaction,
// after locking the source row and verifying sufficient balance.
func (r *Repository) Withdraw(ctx context.Context, source uuid.UUID, amount domain.Money, idempotencyKey, reference *string) (*domain.Transaction, error) {
	if existing, err := r.lookupIdempotent(ctx, idempotencyKey); existing != nil || err != nil {
		return existing, err
	}

	t := domain.NewWithdrawal(source, amount, idempotencyKey, reference)
	err := r.RunInTx(ctx, func(tx pgx.Tx) error {
		acc, err := r.LockAccount(ctx, tx, source)
		if err != nil {
			return err
		}
		if acc.Balance.Currency != amount.Currency {
			return domain.CurrencyMismatchError{Expected: acc.Balance.Currency, Got: amount.Currency}
		}
		if _, err := acc.Balance.Sub(amount); err != nil {
			return err
		}
		if err := r.AdjustBalance(ctx, tx, source, -amount.Amount); err != nil {
			return err
		}
		return r.CreateTransaction(ctx, tx, t)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return r.FindByIdempotencyKey(ctx, *idempotencyKey)
		}
		return nil, err
	}
	return t, nil
}

// Transfer moves amount from source to dest atomically, locking both rows
// in ascending UUID order to avoid deadlocking against a concurrent
// transfer over the same pair of accounts. Cross-currency transfers are
// rejected, never converted.
func (r *Repository) Transfer(ctx context.Context, source, dest uuid.UUID, amount domain.Money, idempotencyKey, reference *string) (*domain.Transaction, error) {
	if existing, err := r.lookupIdempotent(ctx, idempotencyKey); existing != nil || err != nil {
		return existing, err
	}

	t, err := domain.NewTransfer(source, dest, amount, idempotencyKey, reference)
	if err != nil {
		return nil, err
	}

	txErr := r.RunInTx(ctx, func(tx pgx.Tx) error {
		locked, err := r.LockAccountsInOrder(ctx, tx, source, dest)
		if err != nil {
			return err
		}
		sourceAcc, destAcc := locked[source], locked[dest]

		if sourceAcc.Balance.Currency != destAcc.Balance.Currency || sourceAcc.Balance.Currency != amount.Currency {
			return ErrCrossCurrencyTransfer
		}
		if _, err := sourceAcc.Balance.Sub(amount); err != nil {
			return err
		}
		if err := r.AdjustBalance(ctx, tx, source, -amount.Amount); err != nil {
			return err
		}
		if err := r.AdjustBalance(ctx, tx, dest, amount.Amount); err != nil {
			return err
		}
		return r.CreateTransaction(ctx, tx, t)
	})
	if txErr != nil {
		if isUniqueViolation(txErr) {
			return r.FindByIdempotencyKey(ctx, *idempotencyKey)
		}
		return nil, txErr
	}
	return t, nil
}

func (r *Repository) lookupIdempotent(ctx context.Context, key *string) (*domain.Transaction, error) {
	if key == nil || *key == "" {
		return nil, nil
	}
	existing, err := r.FindByIdempotencyKey(ctx, *key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return existing, nil
}

// Package repository is the sole owner of SQL in this service. It speaks
// pgx directly rather than through generated query code: the pack this
// service grew out of leaned on sqlc output that isn't carried here, so
// each accessor file issues its own statements against the pool or an
// open transaction.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository wraps a pgx pool and provides transaction scoping to the
// per-entity accessor files in this package.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository over an already-connected pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// RunInTx runs fn inside a single database transaction, rolling back on any
// returned error and on panic.
func (r *Repository) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("not found")

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505), the signal used throughout this package to
// detect a concurrent idempotent insert losing a race it doesn't need to
// care about.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// requireExactlyOne treats a zero-row result as ErrNotFound, so callers
// like DeactivateApiKey surface a 404 rather than a generic failure when
// the target row doesn't exist; any other row count is a genuine error.
func requireExactlyOne(rows int64, operation string) error {
	if rows == 0 {
		return ErrNotFound
	}
	if rows != 1 {
		return fmt.Errorf("%s affected %d rows", operation, rows)
	}
	return nil
}

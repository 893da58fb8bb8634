package service

import (
	"context"
	"errors"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/brightledger/payments-core/internal/repository"
	"github.com/google/uuid"
)

// AccountService orchestrates account creation and lookup over the
// repository; it adds nothing beyond validation the repository doesn't
// already enforce.
type AccountService struct {
	repo *repository.Repository
}

func NewAccountService(repo *repository.Repository) *AccountService {
	return &AccountService{repo: repo}
}

// CreateAccount validates name and currency and persists a new, zero-balance
// account.
func (s *AccountService) CreateAccount(ctx context.Context, name, currencyCode string) (*domain.Account, error) {
	cur, err := domain.ParseCurrency(currencyCode)
	if err != nil {
		return nil, ValidationError{Msg: err.Error()}
	}
	acc, err := domain.NewAccount(name, cur)
	if err != nil {
		return nil, ValidationError{Msg: err.Error()}
	}
	if err := s.repo.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetAccount fetches a single account, translating a missing row into
// AccountNotFoundError.
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	acc, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, AccountNotFoundError{ID: id}
		}
		return nil, err
	}
	return acc, nil
}

// ListAccounts returns every account; scope filtering is applied by the
// handler, which knows the caller's ApiKey.
func (s *AccountService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// ListTransactionsForAccount returns an account's transaction history,
// newest first.
func (s *AccountService) ListTransactionsForAccount(ctx context.Context, id uuid.UUID, page, pageSize int) ([]*domain.Transaction, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.repo.ListTransactionsForAccount(ctx, id, pageSize, offset)
}

package service

import (
	"context"
	"errors"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/brightledger/payments-core/internal/repository"
	"github.com/google/uuid"
)

// TransactionService orchestrates money movement: it validates caller
// input before touching storage, delegates the atomic mutation to the
// repository, and emits a webhook event once the mutation has committed.
type TransactionService struct {
	repo    *repository.Repository
	webhook *WebhookService
}

func NewTransactionService(repo *repository.Repository, webhook *WebhookService) *TransactionService {
	return &TransactionService{repo: repo, webhook: webhook}
}

func validateAmount(amount int64) error {
	if amount <= 0 {
		return ValidationError{Msg: "amount must be positive"}
	}
	return nil
}

// Deposit credits dest and emits deposit.success on success.
func (s *TransactionService) Deposit(ctx context.Context, dest uuid.UUID, amount domain.Money, idempotencyKey, reference *string) (*domain.Transaction, error) {
	if err := validateAmount(amount.Amount); err != nil {
		return nil, err
	}
	t, err := s.repo.Deposit(ctx, dest, amount, idempotencyKey, reference)
	if err != nil {
		return nil, translateLedgerError(err, dest)
	}
	s.webhook.Emit(ctx, domain.EventDepositSuccess, accountEventPayload(t, dest))
	return t, nil
}

// Withdraw debits source and emits withdraw.success on success.
func (s *TransactionService) Withdraw(ctx context.Context, source uuid.UUID, amount domain.Money, idempotencyKey, reference *string) (*domain.Transaction, error) {
	if err := validateAmount(amount.Amount); err != nil {
		return nil, err
	}
	t, err := s.repo.Withdraw(ctx, source, amount, idempotencyKey, reference)
	if err != nil {
		return nil, translateLedgerError(err, source)
	}
	s.webhook.Emit(ctx, domain.EventWithdrawSuccess, accountEventPayload(t, source))
	return t, nil
}

// Transfer moves amount from source to dest and emits transfer.success on
// success.
func (s *TransactionService) Transfer(ctx context.Context, source, dest uuid.UUID, amount domain.Money, idempotencyKey, reference *string) (*domain.Transaction, error) {
	if source == dest {
		return nil, ValidationError{Msg: "transfer source and destination must differ"}
	}
	if err := validateAmount(amount.Amount); err != nil {
		return nil, err
	}
	t, err := s.repo.Transfer(ctx, source, dest, amount, idempotencyKey, reference)
	if err != nil {
		return nil, translateLedgerError(err, source)
	}
	s.webhook.Emit(ctx, domain.EventTransferSuccess, transferEventPayload(t))
	return t, nil
}

// translateLedgerError maps a repository-layer error into an application
// error category; accountID identifies the account a not-found error
// refers to.
func translateLedgerError(err error, accountID uuid.UUID) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return AccountNotFoundError{ID: accountID}
	default:
		var validation domain.ErrValidation
		var mismatch domain.CurrencyMismatchError
		var insufficient domain.InsufficientFundsError
		if errors.As(err, &validation) {
			return ValidationError{Msg: validation.Error()}
		}
		if errors.As(err, &mismatch) || errors.As(err, &insufficient) || errors.Is(err, repository.ErrCrossCurrencyTransfer) {
			return ValidationError{Msg: err.Error()}
		}
		return err
	}
}

// accountEventPayload builds the deposit.success / withdraw.success payload
// shape: {transaction_id, account_id, amount, currency, reference}.
func accountEventPayload(t *domain.Transaction, accountID uuid.UUID) map[string]interface{} {
	payload := map[string]interface{}{
		"transaction_id": t.ID,
		"account_id":     accountID,
		"amount":         t.Amount.Amount,
		"currency":       t.Amount.Currency.Code(),
	}
	if t.Reference != nil {
		payload["reference"] = *t.Reference
	}
	return payload
}

// transferEventPayload builds the transfer.success payload shape:
// {transaction_id, from_account_id, to_account_id, amount, currency, reference}.
func transferEventPayload(t *domain.Transaction) map[string]interface{} {
	payload := map[string]interface{}{
		"transaction_id":  t.ID,
		"from_account_id": *t.SourceAccountID,
		"to_account_id":   *t.DestAccountID,
		"amount":          t.Amount.Amount,
		"currency":        t.Amount.Currency.Code(),
	}
	if t.Reference != nil {
		payload["reference"] = *t.Reference
	}
	return payload
}

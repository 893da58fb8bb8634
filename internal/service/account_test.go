package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateAccountPersistsZeroBalance(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewAccountService(repo)
	ctx := context.Background()

	acc, err := svc.CreateAccount(ctx, "Alice", "USD")
	require.NoError(t, err)
	require.Equal(t, int64(0), acc.Balance.Amount)
	require.Equal(t, "USD", acc.Balance.Currency.Code())

	fetched, err := svc.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, acc.ID, fetched.ID)
}

func TestCreateAccountRejectsUnknownCurrency(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewAccountService(repo)

	_, err := svc.CreateAccount(context.Background(), "Bob", "ZZZ")
	require.Error(t, err)
	var valErr ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestGetAccountNotFound(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewAccountService(repo)

	_, err := svc.GetAccount(context.Background(), uuid.New())
	require.Error(t, err)
	var notFound AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListTransactionsForAccountPaginates(t *testing.T) {
	repo := newTestRepository(t)
	accountSvc := NewAccountService(repo)
	auditSvc := NewAuditService(repo, testLogger(t))
	webhookSvc := NewWebhookService(repo, testLogger(t), auditSvc)
	txnSvc := NewTransactionService(repo, webhookSvc)
	ctx := context.Background()

	acc, err := accountSvc.CreateAccount(ctx, "Carol", "USD")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := txnSvc.Deposit(ctx, acc.ID, moneyUSD(100), nil, nil)
		require.NoError(t, err)
	}

	txs, err := accountSvc.ListTransactionsForAccount(ctx, acc.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
}

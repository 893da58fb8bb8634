package service

import (
	"context"
	"testing"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTransactionFixture(t *testing.T) (*AccountService, *TransactionService, *WebhookService) {
	t.Helper()
	repo := newTestRepository(t)
	audit := NewAuditService(repo, testLogger(t))
	accountSvc := NewAccountService(repo)
	webhookSvc := NewWebhookService(repo, testLogger(t), audit)
	txnSvc := NewTransactionService(repo, webhookSvc)
	return accountSvc, txnSvc, webhookSvc
}

func TestDepositCreditsAccountAndEmitsEvent(t *testing.T) {
	accountSvc, txnSvc, webhookSvc := newTransactionFixture(t)
	ctx := context.Background()

	_, err := webhookSvc.RegisterEndpoint(ctx, "https://example.com/hook", []string{domain.EventDepositSuccess})
	require.NoError(t, err)

	acc, err := accountSvc.CreateAccount(ctx, "Dana", "USD")
	require.NoError(t, err)

	tx, err := txnSvc.Deposit(ctx, acc.ID, moneyUSD(500), nil, nil)
	require.NoError(t, err)
	require.Equal(t, domain.DirectionDeposit, tx.Direction)

	fetched, err := accountSvc.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, int64(500), fetched.Balance.Amount)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	accountSvc, txnSvc, _ := newTransactionFixture(t)
	ctx := context.Background()

	acc, err := accountSvc.CreateAccount(ctx, "Eve", "USD")
	require.NoError(t, err)

	_, err = txnSvc.Deposit(ctx, acc.ID, moneyUSD(0), nil, nil)
	require.Error(t, err)
	var valErr ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestWithdrawRejectsInsufficientFunds(t *testing.T) {
	accountSvc, txnSvc, _ := newTransactionFixture(t)
	ctx := context.Background()

	acc, err := accountSvc.CreateAccount(ctx, "Frank", "USD")
	require.NoError(t, err)

	_, err = txnSvc.Withdraw(ctx, acc.ID, moneyUSD(100), nil, nil)
	require.Error(t, err)
	var valErr ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestTransferMovesBalanceBetweenAccounts(t *testing.T) {
	accountSvc, txnSvc, _ := newTransactionFixture(t)
	ctx := context.Background()

	source, err := accountSvc.CreateAccount(ctx, "Grace", "USD")
	require.NoError(t, err)
	dest, err := accountSvc.CreateAccount(ctx, "Heidi", "USD")
	require.NoError(t, err)

	_, err = txnSvc.Deposit(ctx, source.ID, moneyUSD(1000), nil, nil)
	require.NoError(t, err)

	_, err = txnSvc.Transfer(ctx, source.ID, dest.ID, moneyUSD(400), nil, nil)
	require.NoError(t, err)

	srcAfter, err := accountSvc.GetAccount(ctx, source.ID)
	require.NoError(t, err)
	require.Equal(t, int64(600), srcAfter.Balance.Amount)

	destAfter, err := accountSvc.GetAccount(ctx, dest.ID)
	require.NoError(t, err)
	require.Equal(t, int64(400), destAfter.Balance.Amount)
}

func TestTransferRejectsSameAccount(t *testing.T) {
	accountSvc, txnSvc, _ := newTransactionFixture(t)
	ctx := context.Background()

	acc, err := accountSvc.CreateAccount(ctx, "Ivan", "USD")
	require.NoError(t, err)

	_, err = txnSvc.Transfer(ctx, acc.ID, acc.ID, moneyUSD(10), nil, nil)
	require.Error(t, err)
	var valErr ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestDepositIsIdempotent(t *testing.T) {
	accountSvc, txnSvc, _ := newTransactionFixture(t)
	ctx := context.Background()

	acc, err := accountSvc.CreateAccount(ctx, "Judy", "USD")
	require.NoError(t, err)

	key := uuid.NewString()
	first, err := txnSvc.Deposit(ctx, acc.ID, moneyUSD(200), &key, nil)
	require.NoError(t, err)

	second, err := txnSvc.Deposit(ctx, acc.ID, moneyUSD(200), &key, nil)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	after, err := accountSvc.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, int64(200), after.Balance.Amount)
}

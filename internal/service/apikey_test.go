package service

import (
	"context"
	"strings"
	"testing"

	"github.com/brightledger/payments-core/internal/api/middleware"
	"github.com/stretchr/testify/require"
)

func TestBootstrapGateAndCreateApiKey(t *testing.T) {
	repo := newTestRepository(t)
	audit := NewAuditService(repo, testLogger(t))
	svc := NewApiKeyService(repo, audit)
	ctx := context.Background()

	bootstrapped, err := svc.Bootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, bootstrapped)

	key, raw, err := svc.CreateApiKey(ctx, "admin", nil)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(raw, "sk_"))
	require.Nil(t, key.AccountID)
	require.True(t, key.IsActive)

	bootstrapped, err = svc.Bootstrapped(ctx)
	require.NoError(t, err)
	require.True(t, bootstrapped)

	found, err := svc.FindApiKeyByHash(ctx, middleware.HashAPIKey(raw))
	require.NoError(t, err)
	require.Equal(t, key.ID, found.ID)
}

func TestCreateApiKeyRejectsEmptyName(t *testing.T) {
	repo := newTestRepository(t)
	audit := NewAuditService(repo, testLogger(t))
	svc := NewApiKeyService(repo, audit)

	_, _, err := svc.CreateApiKey(context.Background(), "", nil)
	require.Error(t, err)
	var valErr ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestDeleteApiKeyDeactivatesAndRejectsUnknown(t *testing.T) {
	repo := newTestRepository(t)
	audit := NewAuditService(repo, testLogger(t))
	svc := NewApiKeyService(repo, audit)
	ctx := context.Background()

	key, raw, err := svc.CreateApiKey(ctx, "scoped", nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteApiKey(ctx, key.ID))

	found, err := svc.FindApiKeyByHash(ctx, middleware.HashAPIKey(raw))
	require.Error(t, err)
	require.Nil(t, found)

	err = svc.DeleteApiKey(ctx, key.ID)
	require.Error(t, err)
}

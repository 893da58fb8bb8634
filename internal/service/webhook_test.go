package service

import (
	"context"
	"strings"
	"testing"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpointGeneratesSecretOnce(t *testing.T) {
	repo := newTestRepository(t)
	audit := NewAuditService(repo, testLogger(t))
	svc := NewWebhookService(repo, testLogger(t), audit)
	ctx := context.Background()

	ep, err := svc.RegisterEndpoint(ctx, "https://example.com/hook", []string{domain.EventDepositSuccess})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ep.Secret, "whsec_"))
	require.True(t, ep.IsActive)
	require.True(t, ep.Subscribes(domain.EventDepositSuccess))
	require.False(t, ep.Subscribes(domain.EventWithdrawSuccess))

	endpoints, err := svc.ListEndpoints(ctx)
	require.NoError(t, err)
	require.Len(t, endpoints, 1)
}

func TestRegisterEndpointValidatesInput(t *testing.T) {
	repo := newTestRepository(t)
	audit := NewAuditService(repo, testLogger(t))
	svc := NewWebhookService(repo, testLogger(t), audit)
	ctx := context.Background()

	_, err := svc.RegisterEndpoint(ctx, "", []string{domain.EventDepositSuccess})
	require.Error(t, err)
}

func TestRegisterEndpointPermitsEmptyEventList(t *testing.T) {
	repo := newTestRepository(t)
	audit := NewAuditService(repo, testLogger(t))
	svc := NewWebhookService(repo, testLogger(t), audit)
	ctx := context.Background()

	ep, err := svc.RegisterEndpoint(ctx, "https://example.com/hook", nil)
	require.NoError(t, err)
	require.False(t, ep.Subscribes(domain.EventDepositSuccess))
}

func TestEmitPersistsPendingEventOnlyForSubscribedEndpoints(t *testing.T) {
	repo := newTestRepository(t)
	audit := NewAuditService(repo, testLogger(t))
	svc := NewWebhookService(repo, testLogger(t), audit)
	ctx := context.Background()

	subscribed, err := svc.RegisterEndpoint(ctx, "https://example.com/deposits", []string{domain.EventDepositSuccess})
	require.NoError(t, err)
	_, err = svc.RegisterEndpoint(ctx, "https://example.com/transfers", []string{domain.EventTransferSuccess})
	require.NoError(t, err)

	svc.Emit(ctx, domain.EventDepositSuccess, map[string]interface{}{"transaction_id": "abc"})

	claimed, err := repo.ClaimPendingWebhookEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, subscribed.ID, claimed[0].EndpointID)
	require.Equal(t, domain.EventDepositSuccess, claimed[0].EventType)
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/brightledger/payments-core/internal/repository"
	"github.com/brightledger/payments-core/internal/webhook"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebhookService registers delivery endpoints and fans business events out
// to every endpoint subscribed to them.
type WebhookService struct {
	repo   *repository.Repository
	logger *zap.Logger
	audit  *AuditService
}

func NewWebhookService(repo *repository.Repository, logger *zap.Logger, audit *AuditService) *WebhookService {
	return &WebhookService{repo: repo, logger: logger, audit: audit}
}

// RegisterEndpoint validates url, generates a signing secret prefixed
// "whsec_", and persists the endpoint. events may be empty, in which case
// the endpoint is registered but matches nothing until updated. The
// secret is returned once; it is not retrievable afterward.
func (s *WebhookService) RegisterEndpoint(ctx context.Context, url string, events []string) (*domain.WebhookEndpoint, error) {
	if url == "" {
		return nil, ValidationError{Msg: "webhook url must not be empty"}
	}
	secret, err := webhook.GenerateSecret()
	if err != nil {
		return nil, err
	}
	eventSet := make(map[string]struct{}, len(events))
	for _, e := range events {
		eventSet[e] = struct{}{}
	}
	endpoint := &domain.WebhookEndpoint{
		ID:        uuid.New(),
		URL:       url,
		Secret:    secret,
		Events:    eventSet,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.RegisterWebhookEndpoint(ctx, endpoint); err != nil {
		return nil, err
	}
	s.audit.Write(ctx, "webhook_endpoint", endpoint.ID, nil, "register", "", "active", nil)
	return endpoint, nil
}

// ListEndpoints returns every registered endpoint.
func (s *WebhookService) ListEndpoints(ctx context.Context) ([]*domain.WebhookEndpoint, error) {
	return s.repo.ListWebhookEndpoints(ctx)
}

// Emit persists one PENDING webhook event per active endpoint subscribed to
// eventType. It is called after a ledger mutation commits and is
// deliberately best-effort: a failure to list endpoints or persist an event
// is logged, never returned to the caller, since it must not roll back or
// fail the business operation that already succeeded.
func (s *WebhookService) Emit(ctx context.Context, eventType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal webhook payload", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	endpoints, err := s.repo.ListWebhookEndpoints(ctx)
	if err != nil {
		s.logger.Error("list webhook endpoints for dispatch", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	for _, ep := range endpoints {
		if !ep.Subscribes(eventType) {
			continue
		}
		ev := &domain.WebhookEvent{
			ID:         uuid.New(),
			EndpointID: ep.ID,
			EventType:  eventType,
			Payload:    body,
			Status:     domain.WebhookStatusPending,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.repo.CreateWebhookEvent(ctx, ev); err != nil {
			s.logger.Error("persist webhook event",
				zap.String("event_type", eventType),
				zap.String("endpoint_id", ep.ID.String()),
				zap.Error(err))
		}
	}
}

// SigningSecretFor returns the endpoint's signing secret, used by the
// delivery worker to sign a claimed event it is about to deliver.
func (s *WebhookService) SigningSecretFor(ctx context.Context, endpointID uuid.UUID) (string, error) {
	endpoints, err := s.repo.ListWebhookEndpoints(ctx)
	if err != nil {
		return "", err
	}
	for _, ep := range endpoints {
		if ep.ID == endpointID {
			return ep.Secret, nil
		}
	}
	return "", fmt.Errorf("webhook endpoint %s not found", endpointID)
}

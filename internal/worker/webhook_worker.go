package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/brightledger/payments-core/internal/observability"
	"github.com/brightledger/payments-core/internal/repository"
	"github.com/brightledger/payments-core/internal/service"
	"github.com/brightledger/payments-core/internal/webhook"
	"go.uber.org/zap"
)

// WebhookWorker claims PENDING webhook events and delivers them with an
// HMAC-signed body. Safe for concurrent instances thanks to
// FOR UPDATE SKIP LOCKED in ClaimPendingWebhookEvents.
type WebhookWorker struct {
	repo       *repository.Repository
	webhookSvc *service.WebhookService
	httpClient *http.Client
	logger     *zap.Logger

	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
}

func NewWebhookWorker(repo *repository.Repository, webhookSvc *service.WebhookService, logger *zap.Logger) *WebhookWorker {
	return &WebhookWorker{
		repo:         repo,
		webhookSvc:   webhookSvc,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
		pollInterval: 1 * time.Second,
		batchSize:    10,
		stopCh:       make(chan struct{}),
	}
}

// WithPollInterval overrides the default 1-second poll interval.
func (w *WebhookWorker) WithPollInterval(interval time.Duration) *WebhookWorker {
	w.pollInterval = interval
	return w
}

// Start runs the claim-deliver-sleep loop until ctx is canceled or Stop is
// called. A pending claim batch is always finished before the loop checks
// for cancellation again, so in-flight deliveries are never abandoned
// mid-batch.
func (w *WebhookWorker) Start(ctx context.Context) {
	w.logger.Info("webhook worker starting",
		zap.Duration("poll_interval", w.pollInterval), zap.Int("batch_size", w.batchSize))

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("webhook worker stopping: context canceled")
			return
		case <-w.stopCh:
			w.logger.Info("webhook worker stopping: stop signal received")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// Stop signals the worker to stop.
func (w *WebhookWorker) Stop() {
	close(w.stopCh)
}

// Run starts the worker in a goroutine and returns a function to stop it.
func (w *WebhookWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *WebhookWorker) processBatch(ctx context.Context) {
	events, err := w.repo.ClaimPendingWebhookEvents(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("claim pending webhook events", zap.Error(err))
		return
	}
	for _, ev := range events {
		w.deliver(ctx, ev)
	}
}

func (w *WebhookWorker) deliver(ctx context.Context, ev *domain.WebhookEvent) {
	endpoints, err := w.webhookSvc.ListEndpoints(ctx)
	if err != nil {
		w.markFailed(ctx, ev, fmt.Errorf("list webhook endpoints: %w", err))
		return
	}
	var target *domain.WebhookEndpoint
	for _, ep := range endpoints {
		if ep.ID == ev.EndpointID {
			target = ep
			break
		}
	}
	if target == nil {
		w.markFailed(ctx, ev, fmt.Errorf("webhook endpoint %s not found", ev.EndpointID))
		return
	}

	body, err := json.Marshal(struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}{Event: ev.EventType, Data: ev.Payload})
	if err != nil {
		w.markFailed(ctx, ev, fmt.Errorf("marshal webhook body: %w", err))
		return
	}

	signature := webhook.Sign(target.Secret, body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		w.markFailed(ctx, ev, fmt.Errorf("build webhook request: %w", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)
	req.Header.Set("X-Webhook-Event-Id", ev.ID.String())
	req.Header.Set("X-Webhook-Event-Type", ev.EventType)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		w.markFailed(ctx, ev, fmt.Errorf("deliver webhook: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := w.repo.UpdateWebhookEventStatus(ctx, ev.ID, domain.WebhookStatusCompleted, nil); err != nil {
			w.logger.Error("mark webhook event completed", zap.String("event_id", ev.ID.String()), zap.Error(err))
		}
		observability.IncrementWebhookDelivery("completed")
		return
	}
	w.markFailed(ctx, ev, fmt.Errorf("webhook endpoint responded %d", resp.StatusCode))
}

func (w *WebhookWorker) markFailed(ctx context.Context, ev *domain.WebhookEvent, cause error) {
	w.logger.Warn("webhook delivery failed", zap.String("event_id", ev.ID.String()), zap.Error(cause))
	msg := cause.Error()
	if err := w.repo.UpdateWebhookEventStatus(ctx, ev.ID, domain.WebhookStatusFailed, &msg); err != nil {
		w.logger.Error("mark webhook event failed", zap.String("event_id", ev.ID.String()), zap.Error(err))
	}
	observability.IncrementWebhookDelivery("failed")
}

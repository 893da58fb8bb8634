package repository

import (
	"context"
	"fmt"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RegisterWebhookEndpoint inserts a new delivery target.
func (r *Repository) RegisterWebhookEndpoint(ctx context.Context, e *domain.WebhookEndpoint) error {
	events := make([]string, 0, len(e.Events))
	for ev := range e.Events {
		events = append(events, ev)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO webhook_endpoints (id, url, secret, events, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.URL, e.Secret, events, e.IsActive, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("register webhook endpoint: %w", err)
	}
	return nil
}

// ListWebhookEndpoints returns every active endpoint subscribed to at least
// one event.
func (r *Repository) ListWebhookEndpoints(ctx context.Context) ([]*domain.WebhookEndpoint, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, url, secret, events, is_active, created_at
		 FROM webhook_endpoints WHERE is_active = true ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list webhook endpoints: %w", err)
	}
	defer rows.Close()

	var out []*domain.WebhookEndpoint
	for rows.Next() {
		e, err := scanWebhookEndpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanWebhookEndpoint(row rowScanner) (*domain.WebhookEndpoint, error) {
	var (
		e      domain.WebhookEndpoint
		events []string
	)
	if err := row.Scan(&e.ID, &e.URL, &e.Secret, &events, &e.IsActive, &e.CreatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	e.Events = make(map[string]struct{}, len(events))
	for _, ev := range events {
		e.Events[ev] = struct{}{}
	}
	return &e, nil
}

// CreateWebhookEvent persists a pending delivery record. Deliberately
// called outside any ledger transaction: a webhook event is a best-effort
// notification, and coupling its durability to the ledger write would
// trade availability of the funds-moving path for delivery consistency
// this service doesn't need.
func (r *Repository) CreateWebhookEvent(ctx context.Context, ev *domain.WebhookEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO webhook_events (id, endpoint_id, event_type, payload, status, created_at, attempts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ev.ID, ev.EndpointID, ev.EventType, ev.Payload, ev.Status, ev.CreatedAt, ev.Attempts,
	)
	if err != nil {
		return fmt.Errorf("create webhook event: %w", err)
	}
	return nil
}

// ClaimPendingWebhookEvents selects up to limit PENDING events and marks
// them PROCESSING in a single transaction, using FOR UPDATE SKIP LOCKED so
// two worker instances polling concurrently never claim the same event.
func (r *Repository) ClaimPendingWebhookEvents(ctx context.Context, limit int) ([]*domain.WebhookEvent, error) {
	var claimed []*domain.WebhookEvent
	err := r.RunInTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id, endpoint_id, event_type, payload, status, created_at, processed_at, attempts, last_error
			 FROM webhook_events WHERE status = $1
			 ORDER BY created_at ASC LIMIT $2 FOR UPDATE SKIP LOCKED`,
			domain.WebhookStatusPending, limit,
		)
		if err != nil {
			return fmt.Errorf("select pending webhook events: %w", err)
		}
		var ids []uuid.UUID
		for rows.Next() {
			ev, err := scanWebhookEvent(rows)
			if err != nil {
				rows.Close()
				return err
			}
			claimed = append(claimed, ev)
			ids = append(ids, ev.ID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx,
			`UPDATE webhook_events SET status = $1 WHERE id = ANY($2)`,
			domain.WebhookStatusProcessing, ids,
		); err != nil {
			return fmt.Errorf("mark webhook events processing: %w", err)
		}
		for _, ev := range claimed {
			ev.Status = domain.WebhookStatusProcessing
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func scanWebhookEvent(row rowScanner) (*domain.WebhookEvent, error) {
	var ev domain.WebhookEvent
	if err := row.Scan(&ev.ID, &ev.EndpointID, &ev.EventType, &ev.Payload, &ev.Status,
		&ev.CreatedAt, &ev.ProcessedAt, &ev.Attempts, &ev.LastError); err != nil {
		return nil, mapNoRows(err)
	}
	return &ev, nil
}

// UpdateWebhookEventStatus transitions an event to a terminal or
// in-progress status, recording the failure reason when provided.
func (r *Repository) UpdateWebhookEventStatus(ctx context.Context, id uuid.UUID, status string, lastErr *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE webhook_events SET status = $1, processed_at = now(), attempts = attempts + 1, last_error = $2
		 WHERE id = $3`,
		status, lastErr, id,
	)
	if err != nil {
		return fmt.Errorf("update webhook event status: %w", err)
	}
	return requireExactlyOne(tag.RowsAffected(), "update webhook event status")
}

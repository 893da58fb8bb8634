package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one immutable audit_log row: a record of a state
// transition on an api key or webhook event, per §4.7.
type AuditEntry struct {
	EntityType string
	EntityID   uuid.UUID
	ActorID    *uuid.UUID
	Action     string
	PrevState  *string
	NextState  *string
	Metadata   []byte
}

// CreateAuditLog inserts one audit row.
func (r *Repository) CreateAuditLog(ctx context.Context, e AuditEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_log (entity_type, entity_id, actor_id, action, prev_state, next_state, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.EntityType, e.EntityID, e.ActorID, e.Action, e.PrevState, e.NextState, e.Metadata, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

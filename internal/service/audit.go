package service

import (
	"context"

	"github.com/brightledger/payments-core/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditService writes immutable audit trail entries for api key and
// webhook endpoint state transitions (§4.7). Failures are logged and
// never propagated: an audit write must never fail the business
// operation it is recording.
type AuditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewAuditService(repo *repository.Repository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Write records one audit entry. prevState/nextState/metadata are
// optional; pass "" or nil when not applicable.
func (s *AuditService) Write(ctx context.Context, entityType string, entityID uuid.UUID, actorID *uuid.UUID, action, prevState, nextState string, metadata []byte) {
	entry := repository.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Action:     action,
		PrevState:  textOrNil(prevState),
		NextState:  textOrNil(nextState),
		Metadata:   metadata,
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Error("audit log write failed",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.String("action", action),
			zap.Error(err))
	}
}

func textOrNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

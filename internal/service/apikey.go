package service

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/brightledger/payments-core/internal/api/middleware"
	"github.com/brightledger/payments-core/internal/domain"
	"github.com/brightledger/payments-core/internal/repository"
	"github.com/google/uuid"
)

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomAlphanumeric(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random secret: %w", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = secretAlphabet[int(b)%len(secretAlphabet)]
	}
	return string(out), nil
}

// ApiKeyService manages caller credentials. Raw keys are generated here,
// returned exactly once to the caller, and never persisted.
type ApiKeyService struct {
	repo  *repository.Repository
	audit *AuditService
}

func NewApiKeyService(repo *repository.Repository, audit *AuditService) *ApiKeyService {
	return &ApiKeyService{repo: repo, audit: audit}
}

// Bootstrapped reports whether any api key has ever been created, gating
// POST /api/bootstrap: the endpoint issues the first admin key only while
// the store is empty.
func (s *ApiKeyService) Bootstrapped(ctx context.Context) (bool, error) {
	count, err := s.repo.CountApiKeys(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateApiKey generates a 32-char alphanumeric secret prefixed "sk_",
// persists its hash, and returns the record alongside the raw key. The raw
// key is returned once and is unrecoverable afterward.
func (s *ApiKeyService) CreateApiKey(ctx context.Context, name string, scope *uuid.UUID) (*domain.ApiKey, string, error) {
	if name == "" {
		return nil, "", ValidationError{Msg: "api key name must not be empty"}
	}
	raw, err := randomAlphanumeric(32)
	if err != nil {
		return nil, "", err
	}
	rawKey := "sk_" + raw
	hash := middleware.HashAPIKey(rawKey)

	k := domain.NewApiKey(name, hash, scope)
	if err := s.repo.CreateApiKey(ctx, k); err != nil {
		return nil, "", err
	}
	s.audit.Write(ctx, "api_key", k.ID, nil, "create", "", "active", nil)
	return k, rawKey, nil
}

// ListApiKeys returns every active key record. Raw keys are never
// returned since they are never stored.
func (s *ApiKeyService) ListApiKeys(ctx context.Context) ([]*domain.ApiKey, error) {
	return s.repo.ListApiKeys(ctx)
}

// DeleteApiKey soft-deletes a key so it can no longer authenticate.
func (s *ApiKeyService) DeleteApiKey(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeactivateApiKey(ctx, id); err != nil {
		return err
	}
	s.audit.Write(ctx, "api_key", id, nil, "deactivate", "active", "inactive", nil)
	return nil
}

// FindApiKeyByHash looks up an active key by the hash of a raw candidate,
// satisfying middleware.AuthStore.
func (s *ApiKeyService) FindApiKeyByHash(ctx context.Context, hash string) (*domain.ApiKey, error) {
	return s.repo.FindApiKeyByHash(ctx, hash)
}

// TouchApiKeyLastUsed records the current time as the key's last-used
// timestamp, satisfying middleware.AuthStore. Best-effort: the caller runs
// this off the request path and ignores its error.
func (s *ApiKeyService) TouchApiKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	return s.repo.TouchApiKeyLastUsed(ctx, id)
}

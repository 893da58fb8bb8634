package service

import (
	"context"
	"testing"

	"github.com/brightledger/payments-core/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAuditWritePersistsEntry(t *testing.T) {
	db := setupTestDB(t)
	audit := NewAuditService(repository.NewRepository(db), testLogger(t))
	ctx := context.Background()

	entityID := uuid.New()
	audit.Write(ctx, "api_key", entityID, nil, "create", "", "active", nil)

	var count int
	err := db.QueryRow(ctx,
		`SELECT count(*) FROM audit_log WHERE entity_id = $1 AND action = 'create'`, entityID,
	).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestAuditWriteOnApiKeyCreateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	audit := NewAuditService(repo, testLogger(t))
	svc := NewApiKeyService(repo, audit)
	ctx := context.Background()

	key, _, err := svc.CreateApiKey(ctx, "auditable", nil)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteApiKey(ctx, key.ID))

	var actions []string
	rows, err := db.Query(ctx, `SELECT action FROM audit_log WHERE entity_id = $1 ORDER BY created_at ASC`, key.ID)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var action string
		require.NoError(t, rows.Scan(&action))
		actions = append(actions, action)
	}
	require.Equal(t, []string{"create", "deactivate"}, actions)
}

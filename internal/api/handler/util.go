package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brightledger/payments-core/internal/api/middleware"
	"github.com/brightledger/payments-core/internal/api/problem"
	"github.com/brightledger/payments-core/internal/domain"
	"github.com/brightledger/payments-core/internal/repository"
	"github.com/brightledger/payments-core/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError writes the standard error envelope.
func RespondError(w http.ResponseWriter, status int, message string) {
	problem.Write(w, status, message)
}

// scopeAccount reports whether the authenticated caller may access
// accountID: admin-scope keys (account_id=None) may access any account;
// scoped keys may only access their own.
func scopeAccount(r *http.Request, accountID uuid.UUID) bool {
	key := middleware.APIKeyFromContext(r.Context())
	if key == nil || key.IsAdmin() {
		return true
	}
	return *key.AccountID == accountID
}

// isAdmin reports whether the authenticated caller holds an admin-scope
// key (account_id=None).
func isAdmin(r *http.Request) bool {
	key := middleware.APIKeyFromContext(r.Context())
	return key == nil || key.IsAdmin()
}

// accountJSON renders an account as {id, name, balance, currency}.
func accountJSON(acc *domain.Account) map[string]interface{} {
	return map[string]interface{}{
		"id":         acc.ID,
		"name":       acc.Name,
		"balance":    acc.Balance.Amount,
		"currency":   acc.Balance.Currency.Code(),
		"created_at": acc.CreatedAt,
	}
}

// transactionJSON renders a transaction for account-history listings.
func transactionJSON(t *domain.Transaction) map[string]interface{} {
	out := map[string]interface{}{
		"id":         t.ID,
		"direction":  t.Direction,
		"amount":     t.Amount.Amount,
		"currency":   t.Amount.Currency.Code(),
		"created_at": t.CreatedAt,
	}
	if t.SourceAccountID != nil {
		out["source_account_id"] = *t.SourceAccountID
	}
	if t.DestAccountID != nil {
		out["dest_account_id"] = *t.DestAccountID
	}
	if t.IdempotencyKey != nil {
		out["idempotency_key"] = *t.IdempotencyKey
	}
	if t.Reference != nil {
		out["reference"] = *t.Reference
	}
	return out
}

// respondServiceError maps an application error category to its HTTP
// status and writes the standard error envelope; anything uncategorized
// falls back to 500 and is logged with op for diagnosis.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, op string) {
	var validation service.ValidationError
	var notFound service.AccountNotFoundError
	var denied service.AccessDeniedError

	switch {
	case errors.As(err, &validation):
		RespondError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		RespondError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &denied):
		RespondError(w, http.StatusBadRequest, denied.Error())
	case errors.Is(err, repository.ErrNotFound):
		RespondError(w, http.StatusNotFound, "not found")
	default:
		if status, msg, ok := mapDBError(err); ok {
			RespondError(w, status, msg)
			return
		}
		logger.Error(op+" failed", zap.Error(err))
		RespondError(w, http.StatusInternalServerError, "internal error")
	}
}

func mapDBError(err error) (status int, message string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0, "", false
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		return http.StatusConflict, "resource already exists", true
	case "23503": // foreign_key_violation
		return http.StatusBadRequest, "invalid reference", true
	case "23514": // check_violation
		return http.StatusBadRequest, "request violates data constraints", true
	case "23502": // not_null_violation
		return http.StatusBadRequest, "missing required field", true
	default:
		return 0, "", false
	}
}

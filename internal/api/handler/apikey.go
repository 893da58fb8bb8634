package handler

import (
	"encoding/json"
	"net/http"

	"github.com/brightledger/payments-core/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiKeyHandler struct {
	svc    *service.ApiKeyService
	logger *zap.Logger
}

func NewApiKeyHandler(svc *service.ApiKeyService, logger *zap.Logger) *ApiKeyHandler {
	return &ApiKeyHandler{svc: svc, logger: logger}
}

// Bootstrap handles POST /api/bootstrap: issues the first admin key while
// the store is empty, 400 otherwise.
func (h *ApiKeyHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bootstrapped, err := h.svc.Bootstrapped(r.Context())
	if err != nil {
		h.logger.Error("check bootstrap state failed", zap.Error(err))
		RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if bootstrapped {
		RespondError(w, http.StatusBadRequest, "already bootstrapped")
		return
	}

	key, raw, err := h.svc.CreateApiKey(r.Context(), req.Name, nil)
	if err != nil {
		respondServiceError(w, h.logger, err, "bootstrap")
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"api_key": raw,
		"message": "store this key now; it will not be shown again",
		"id":      key.ID,
	})
}

// CreateApiKey handles POST /api/keys (admin-scope only).
func (h *ApiKeyHandler) CreateApiKey(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		RespondError(w, http.StatusForbidden, "access denied")
		return
	}
	var req struct {
		Name      string `json:"name"`
		AccountID string `json:"account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var scope *uuid.UUID
	if req.AccountID != "" {
		id, err := uuid.Parse(req.AccountID)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "invalid account_id")
			return
		}
		scope = &id
	}

	key, raw, err := h.svc.CreateApiKey(r.Context(), req.Name, scope)
	if err != nil {
		respondServiceError(w, h.logger, err, "create api key")
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"api_key": raw,
		"message": "store this key now; it will not be shown again",
		"id":      key.ID,
	})
}

// ListApiKeys handles GET /api/keys (admin-scope only). Raw key material is
// never included.
func (h *ApiKeyHandler) ListApiKeys(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		RespondError(w, http.StatusForbidden, "access denied")
		return
	}
	keys, err := h.svc.ListApiKeys(r.Context())
	if err != nil {
		h.logger.Error("list api keys failed", zap.Error(err))
		RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]interface{}{
			"id":           k.ID,
			"name":         k.Name,
			"is_active":    k.IsActive,
			"created_at":   k.CreatedAt,
			"last_used_at": k.LastUsedAt,
		})
	}
	RespondJSON(w, http.StatusOK, out)
}

// DeleteApiKey handles DELETE /api/keys/{id} (admin-scope only).
func (h *ApiKeyHandler) DeleteApiKey(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		RespondError(w, http.StatusForbidden, "access denied")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid api key id")
		return
	}
	if err := h.svc.DeleteApiKey(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete api key")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

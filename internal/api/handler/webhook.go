package handler

import (
	"encoding/json"
	"net/http"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/brightledger/payments-core/internal/service"
	"go.uber.org/zap"
)

// WebhookHandler registers and lists outbound webhook delivery endpoints.
type WebhookHandler struct {
	svc    *service.WebhookService
	logger *zap.Logger
}

func NewWebhookHandler(svc *service.WebhookService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, logger: logger}
}

// RegisterEndpoint handles POST /api/webhooks. The signing secret is
// returned once, in this response only.
func (h *WebhookHandler) RegisterEndpoint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL    string   `json:"url"`
		Events []string `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	endpoint, err := h.svc.RegisterEndpoint(r.Context(), req.URL, req.Events)
	if err != nil {
		respondServiceError(w, h.logger, err, "register webhook endpoint")
		return
	}
	RespondJSON(w, http.StatusCreated, webhookEndpointJSON(endpoint, true))
}

// ListEndpoints handles GET /api/webhooks.
func (h *WebhookHandler) ListEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.svc.ListEndpoints(r.Context())
	if err != nil {
		h.logger.Error("list webhook endpoints failed", zap.Error(err))
		RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]map[string]interface{}, 0, len(endpoints))
	for _, ep := range endpoints {
		out = append(out, webhookEndpointJSON(ep, false))
	}
	RespondJSON(w, http.StatusOK, out)
}

// webhookEndpointJSON renders {id, url, events, is_active}, including
// secret only when includeSecret is set: the signing secret is shown once,
// in the registration response, and never again afterward.
func webhookEndpointJSON(ep *domain.WebhookEndpoint, includeSecret bool) map[string]interface{} {
	events := make([]string, 0, len(ep.Events))
	for e := range ep.Events {
		events = append(events, e)
	}
	out := map[string]interface{}{
		"id":        ep.ID,
		"url":       ep.URL,
		"events":    events,
		"is_active": ep.IsActive,
	}
	if includeSecret {
		out["secret"] = ep.Secret
	}
	return out
}

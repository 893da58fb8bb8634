package handler

import "net/http"

// HealthHandler answers the liveness probe. No dependency is checked: the
// bypass list treats /health as always reachable, so it can't itself
// depend on anything that might be down.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

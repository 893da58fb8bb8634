package handler

import (
	"encoding/json"
	"net/http"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ExchangeHandler exposes the currency registry's rates as a read-only
// surface, admin-scoped.
type ExchangeHandler struct{}

func NewExchangeHandler() *ExchangeHandler {
	return &ExchangeHandler{}
}

// Rates handles GET /api/rates/{base}, returning every other registered
// currency's rate against base.
func (h *ExchangeHandler) Rates(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		RespondError(w, http.StatusForbidden, "access denied")
		return
	}
	base, err := domain.ParseCurrency(chi.URLParam(r, "base"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rates := make(map[string]string, len(domain.AllCurrencies()))
	for _, c := range domain.AllCurrencies() {
		rates[c.Code()] = domain.GetRate(base, c).String()
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"base":  base.Code(),
		"rates": rates,
	})
}

// Convert handles POST /api/convert, admin-scoped.
func (h *ExchangeHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		RespondError(w, http.StatusForbidden, "access denied")
		return
	}
	var req struct {
		Amount int64  `json:"amount"`
		From   string `json:"from"`
		To     string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	from, err := domain.ParseCurrency(req.From)
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := domain.ParseCurrency(req.To)
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	converted := domain.Convert(req.Amount, from, to)
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"from":      from.Code(),
		"to":        to.Code(),
		"amount":    req.Amount,
		"converted": converted,
		"rate":      domain.GetRate(from, to).String(),
	})
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/brightledger/payments-core/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AccountHandler struct {
	svc    *service.AccountService
	logger *zap.Logger
}

func NewAccountHandler(svc *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, logger: logger}
}

// CreateAccount handles POST /api/accounts.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acc, err := h.svc.CreateAccount(r.Context(), req.Name, req.Currency)
	if err != nil {
		respondServiceError(w, h.logger, err, "create account")
		return
	}
	RespondJSON(w, http.StatusCreated, accountJSON(acc))
}

// ListAccounts handles GET /api/accounts, filtered to the caller's scope.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		h.logger.Error("list accounts failed", zap.Error(err))
		RespondError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}

	out := make([]map[string]interface{}, 0, len(accounts))
	for _, acc := range accounts {
		if !scopeAccount(r, acc.ID) {
			continue
		}
		out = append(out, accountJSON(acc))
	}
	RespondJSON(w, http.StatusOK, out)
}

// GetAccount handles GET /api/accounts/{id}.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	if !scopeAccount(r, id) {
		RespondError(w, http.StatusBadRequest, "access denied")
		return
	}

	acc, err := h.svc.GetAccount(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get account")
		return
	}
	RespondJSON(w, http.StatusOK, accountJSON(acc))
}

// ListTransactions handles GET /api/accounts/{id}/transactions.
func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	if !scopeAccount(r, id) {
		RespondError(w, http.StatusBadRequest, "access denied")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	txs, err := h.svc.ListTransactionsForAccount(r.Context(), id, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "list transactions")
		return
	}

	out := make([]map[string]interface{}, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionJSON(t))
	}
	RespondJSON(w, http.StatusOK, out)
}

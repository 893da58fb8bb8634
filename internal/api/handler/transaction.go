package handler

import (
	"encoding/json"
	"net/http"

	"github.com/brightledger/payments-core/internal/domain"
	"github.com/brightledger/payments-core/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	svc    *service.TransactionService
	logger *zap.Logger
}

func NewTransactionHandler(svc *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{svc: svc, logger: logger}
}

type moneyMovementRequest struct {
	AccountID       string  `json:"account_id"`
	SourceAccountID string  `json:"source_account_id"`
	DestAccountID   string  `json:"dest_account_id"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	IdempotencyKey  *string `json:"idempotency_key"`
	Reference       *string `json:"reference"`
}

// Deposit handles POST /api/transactions/deposit.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req moneyMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dest, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid account_id")
		return
	}
	if !scopeAccount(r, dest) {
		RespondError(w, http.StatusBadRequest, "access denied")
		return
	}
	money, err := parseMoney(req.Amount, req.Currency)
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.svc.Deposit(r.Context(), dest, money, req.IdempotencyKey, req.Reference)
	if err != nil {
		respondServiceError(w, h.logger, err, "deposit")
		return
	}
	RespondJSON(w, http.StatusOK, transactionJSON(t))
}

// Withdraw handles POST /api/transactions/withdraw.
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req moneyMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	source, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid account_id")
		return
	}
	if !scopeAccount(r, source) {
		RespondError(w, http.StatusBadRequest, "access denied")
		return
	}
	money, err := parseMoney(req.Amount, req.Currency)
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.svc.Withdraw(r.Context(), source, money, req.IdempotencyKey, req.Reference)
	if err != nil {
		respondServiceError(w, h.logger, err, "withdraw")
		return
	}
	RespondJSON(w, http.StatusOK, transactionJSON(t))
}

// Transfer handles POST /api/transactions/transfer.
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req moneyMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	source, err := uuid.Parse(req.SourceAccountID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid source_account_id")
		return
	}
	dest, err := uuid.Parse(req.DestAccountID)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid dest_account_id")
		return
	}
	if !scopeAccount(r, source) || !scopeAccount(r, dest) {
		RespondError(w, http.StatusBadRequest, "access denied")
		return
	}
	money, err := parseMoney(req.Amount, req.Currency)
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.svc.Transfer(r.Context(), source, dest, money, req.IdempotencyKey, req.Reference)
	if err != nil {
		respondServiceError(w, h.logger, err, "transfer")
		return
	}
	RespondJSON(w, http.StatusOK, transactionJSON(t))
}

func parseMoney(amount int64, currencyCode string) (domain.Money, error) {
	cur, err := domain.ParseCurrency(currencyCode)
	if err != nil {
		return domain.Money{}, err
	}
	return domain.NewMoney(amount, cur), nil
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyName is returned by constructors that reject blank names.
type ErrValidation struct {
	Msg string
}

func (e ErrValidation) Error() string { return e.Msg }

// Account owns a balance in a single, immutable currency.
type Account struct {
	ID        uuid.UUID
	Name      string
	Balance   Money
	CreatedAt time.Time
}

// NewAccount trims and validates name, and assigns a fresh id, zero balance
// in the given currency, and the current time as CreatedAt.
func NewAccount(name string, currency Currency) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation{Msg: "account name must not be empty"}
	}
	if !currency.valid() {
		return nil, ErrUnknownCurrency{Code: string(currency)}
	}
	return &Account{
		ID:        uuid.New(),
		Name:      name,
		Balance:   NewMoney(0, currency),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Credit increases the account's balance by m.
func (a *Account) Credit(m Money) error {
	newBalance, err := a.Balance.Add(m)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	return nil
}

// Debit decreases the account's balance by m.
func (a *Account) Debit(m Money) error {
	newBalance, err := a.Balance.Sub(m)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	return nil
}

// Transaction is an immutable record of a single money movement.
type Transaction struct {
	ID              uuid.UUID
	Direction       string
	Amount          Money
	SourceAccountID *uuid.UUID
	DestAccountID   *uuid.UUID
	IdempotencyKey  *string
	Reference       *string
	CreatedAt       time.Time
}

// NewDeposit constructs a DEPOSIT transaction (destination only).
func NewDeposit(dest uuid.UUID, amount Money, idempotencyKey, reference *string) *Transaction {
	return &Transaction{
		ID:             uuid.New(),
		Direction:      DirectionDeposit,
		Amount:         amount,
		DestAccountID:  &dest,
		IdempotencyKey: idempotencyKey,
		Reference:      reference,
		CreatedAt:      time.Now().UTC(),
	}
}

// NewWithdrawal constructs a WITHDRAWAL transaction (source only).
func NewWithdrawal(source uuid.UUID, amount Money, idempotencyKey, reference *string) *Transaction {
	return &Transaction{
		ID:              uuid.New(),
		Direction:       DirectionWithdrawal,
		Amount:          amount,
		SourceAccountID: &source,
		IdempotencyKey:  idempotencyKey,
		Reference:       reference,
		CreatedAt:       time.Now().UTC(),
	}
}

// NewTransfer constructs a TRANSFER transaction (both source and dest, must differ).
func NewTransfer(source, dest uuid.UUID, amount Money, idempotencyKey, reference *string) (*Transaction, error) {
	if source == dest {
		return nil, ErrValidation{Msg: "transfer source and destination must differ"}
	}
	return &Transaction{
		ID:              uuid.New(),
		Direction:       DirectionTransfer,
		Amount:          amount,
		SourceAccountID: &source,
		DestAccountID:   &dest,
		IdempotencyKey:  idempotencyKey,
		Reference:       reference,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// FromParts reconstructs a Transaction verbatim from storage, with no
// validation beyond what the repository layer already guarantees.
func FromParts(id uuid.UUID, direction string, amount Money, source, dest *uuid.UUID, idempotencyKey, reference *string, createdAt time.Time) *Transaction {
	return &Transaction{
		ID:              id,
		Direction:       direction,
		Amount:          amount,
		SourceAccountID: source,
		DestAccountID:   dest,
		IdempotencyKey:  idempotencyKey,
		Reference:       reference,
		CreatedAt:       createdAt,
	}
}

// ApiKey is a caller credential. The raw key is never persisted; only its
// SHA-256 hex hash is.
type ApiKey struct {
	ID         uuid.UUID
	Name       string
	KeyHash    string
	AccountID  *uuid.UUID // nil = admin-scope
	IsActive   bool
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// NewApiKey constructs an active ApiKey record. There is no mutation API
// besides soft-delete, performed by the repository layer.
func NewApiKey(name, hash string, scope *uuid.UUID) *ApiKey {
	return &ApiKey{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   hash,
		AccountID: scope,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

// IsAdmin reports whether this key has unrestricted account visibility.
func (k *ApiKey) IsAdmin() bool {
	return k.AccountID == nil
}

// WebhookEndpoint is a registered delivery target for business events.
type WebhookEndpoint struct {
	ID        uuid.UUID
	URL       string
	Secret    string
	Events    map[string]struct{}
	IsActive  bool
	CreatedAt time.Time
}

// Subscribes reports whether this endpoint should receive the given event
// type, using strict set membership: an empty Events set means "no events",
// not "all events".
func (e *WebhookEndpoint) Subscribes(eventType string) bool {
	if len(e.Events) == 0 {
		return false
	}
	_, ok := e.Events[eventType]
	return ok
}

// WebhookEvent is a single persisted, at-least-once-delivered notification.
type WebhookEvent struct {
	ID          uuid.UUID
	EndpointID  uuid.UUID
	EventType   string
	Payload     []byte
	Status      string
	CreatedAt   time.Time
	ProcessedAt *time.Time
	Attempts    int
	LastError   *string
}

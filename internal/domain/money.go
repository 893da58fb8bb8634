package domain

import (
	"fmt"
	"math"
)

// Money is a signed integer amount in the minor unit of Currency. Arithmetic
// between Money values is only defined when currencies match.
type Money struct {
	Amount   int64
	Currency Currency
}

// NewMoney constructs a Money value. Domain-level constructors that create
// new balances reject negative amounts; ledger internals dealing in signed
// deltas call this directly and may pass negative amounts.
func NewMoney(amount int64, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

// CurrencyMismatchError is raised when arithmetic is attempted between
// Money values of differing currencies.
type CurrencyMismatchError struct {
	Expected Currency
	Got      Currency
}

func (e CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: expected %s, got %s", e.Expected, e.Got)
}

// InsufficientFundsError carries the available and requested amounts for a
// rejected debit.
type InsufficientFundsError struct {
	Available int64
	Requested int64
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %d, requested %d", e.Available, e.Requested)
}

// Add returns m+other, saturating at the 64-bit signed maximum on overflow.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, CurrencyMismatchError{Expected: m.Currency, Got: other.Currency}
	}
	sum := m.Amount + other.Amount
	if other.Amount > 0 && sum < m.Amount {
		sum = math.MaxInt64
	}
	if other.Amount < 0 && sum > m.Amount {
		sum = math.MinInt64
	}
	return Money{Amount: sum, Currency: m.Currency}, nil
}

// Sub returns m-other. A negative result raises InsufficientFundsError
// carrying {available: m.Amount, requested: other.Amount}.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, CurrencyMismatchError{Expected: m.Currency, Got: other.Currency}
	}
	if m.Amount < other.Amount {
		return Money{}, InsufficientFundsError{Available: m.Amount, Requested: other.Amount}
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// ConvertTo converts m into the target currency via the USD pivot, subject
// to the fluctuation flag.
func (m Money) ConvertTo(target Currency) Money {
	return Money{Amount: Convert(m.Amount, m.Currency, target), Currency: target}
}

// String renders {symbol}{major}.{minor:02}.
func (m Money) String() string {
	perMajor := m.Currency.MinorUnitsPerMajor()
	neg := ""
	amount := m.Amount
	if amount < 0 {
		neg = "-"
		amount = -amount
	}
	major := amount / perMajor
	minor := amount % perMajor
	return fmt.Sprintf("%s%s%d.%02d", neg, m.Currency.Symbol(), major, minor)
}

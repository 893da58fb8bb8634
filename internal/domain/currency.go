package domain

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// Currency identifies one of the closed set of supported ISO 4217 codes.
// The set is closed at build time: adding a currency is a source change.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	INR Currency = "INR"
)

// currencyInfo carries the static metadata for a registered currency.
type currencyInfo struct {
	symbol          string
	minorUnitLabel  string
	minorPerMajor   int64
	baseToUSDRate   decimal.Decimal
	maxVariancePct  decimal.Decimal
}

// registry is the closed, declaration-ordered set of currencies. Rates and
// variances are taken from the exchange-rate reference this registry was
// ported from, not the illustrative mocks a prior iteration of this service
// shipped with.
var registry = []Currency{USD, EUR, GBP, INR}

var registryInfo = map[Currency]currencyInfo{
	USD: {symbol: "$", minorUnitLabel: "cent", minorPerMajor: 100, baseToUSDRate: decimal.NewFromFloat(1.0), maxVariancePct: decimal.NewFromFloat(0)},
	EUR: {symbol: "€", minorUnitLabel: "cent", minorPerMajor: 100, baseToUSDRate: decimal.NewFromFloat(1.087), maxVariancePct: decimal.NewFromFloat(0.5)},
	GBP: {symbol: "£", minorUnitLabel: "penny", minorPerMajor: 100, baseToUSDRate: decimal.NewFromFloat(1.266), maxVariancePct: decimal.NewFromFloat(0.5)},
	INR: {symbol: "₹", minorUnitLabel: "paisa", minorPerMajor: 100, baseToUSDRate: decimal.NewFromFloat(0.01203), maxVariancePct: decimal.NewFromFloat(0.3)},
}

// ErrUnknownCurrency is returned by Parse for a code outside the registry.
type ErrUnknownCurrency struct {
	Code string
}

func (e ErrUnknownCurrency) Error() string {
	return fmt.Sprintf("unknown currency: %s", e.Code)
}

// AllCurrencies returns the registry in stable declaration order.
func AllCurrencies() []Currency {
	out := make([]Currency, len(registry))
	copy(out, registry)
	return out
}

// ParseCurrency resolves a currency code case-insensitively.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := registryInfo[c]; !ok {
		return "", ErrUnknownCurrency{Code: code}
	}
	return c, nil
}

// Code returns the currency's uppercase ISO 4217 code.
func (c Currency) Code() string {
	return string(c)
}

// Symbol returns the currency's display symbol.
func (c Currency) Symbol() string {
	return registryInfo[c].symbol
}

// MinorUnitsPerMajor returns how many minor units make one major unit.
func (c Currency) MinorUnitsPerMajor() int64 {
	return registryInfo[c].minorPerMajor
}

func (c Currency) valid() bool {
	_, ok := registryInfo[c]
	return ok
}

// fluctuationEnabled is the process-wide boolean controlling whether
// ToUSDRate perturbs the base rate. Default disabled.
var fluctuationEnabled atomic.Bool

// EnableFluctuation turns on rate perturbation process-wide.
func EnableFluctuation() {
	fluctuationEnabled.Store(true)
}

// DisableFluctuation turns off rate perturbation process-wide.
func DisableFluctuation() {
	fluctuationEnabled.Store(false)
}

// FluctuationEnabled reports whether perturbation is currently active.
func FluctuationEnabled() bool {
	return fluctuationEnabled.Load()
}

// randomFactor derives a pseudo-random real in [-1, 1] from wall-clock
// nanoseconds. Biased and not cryptographically random by design — the
// intent is simulation, not security.
func randomFactor() decimal.Decimal {
	nanos := time.Now().UnixNano()
	mod := nanos % 2001
	if mod < 0 {
		mod += 2001
	}
	return decimal.NewFromInt(mod).Div(decimal.NewFromInt(1000)).Sub(decimal.NewFromInt(1))
}

// ToUSDRate returns the currency's rate to USD, possibly perturbed by the
// process-wide fluctuation flag: base * (1 + v*r) where v is the max
// variance fraction and r is a pseudo-random value in [-1, 1].
func (c Currency) ToUSDRate() decimal.Decimal {
	info := registryInfo[c]
	if !FluctuationEnabled() {
		return info.baseToUSDRate
	}
	v := info.maxVariancePct.Div(decimal.NewFromInt(100))
	perturbation := decimal.NewFromInt(1).Add(v.Mul(randomFactor()))
	return info.baseToUSDRate.Mul(perturbation)
}

// BaseToUSDRate returns the currency's declared base rate, ignoring
// fluctuation entirely.
func (c Currency) BaseToUSDRate() decimal.Decimal {
	return registryInfo[c].baseToUSDRate
}

// GetRate returns rate(from)/rate(to), subject to fluctuation.
func GetRate(from, to Currency) decimal.Decimal {
	return from.ToUSDRate().Div(to.ToUSDRate())
}

// GetBaseRate returns base_rate(from)/base_rate(to), ignoring fluctuation.
func GetBaseRate(from, to Currency) decimal.Decimal {
	return from.BaseToUSDRate().Div(to.BaseToUSDRate())
}

// Convert converts an integer minor-unit amount from one currency to
// another through a USD pivot, rounding half-away-from-zero. Same-currency
// conversion is the identity.
func Convert(amount int64, from, to Currency) int64 {
	if from == to {
		return amount
	}
	usd := decimal.NewFromInt(amount).Mul(from.ToUSDRate())
	result := usd.Div(to.ToUSDRate())
	return roundHalfAwayFromZero(result)
}

// ConvertAtBaseRate is Convert's fluctuation-free counterpart.
func ConvertAtBaseRate(amount int64, from, to Currency) int64 {
	if from == to {
		return amount
	}
	usd := decimal.NewFromInt(amount).Mul(from.BaseToUSDRate())
	result := usd.Div(to.BaseToUSDRate())
	return roundHalfAwayFromZero(result)
}

func roundHalfAwayFromZero(d decimal.Decimal) int64 {
	if d.Sign() >= 0 {
		return d.Add(decimal.NewFromFloat(0.5)).Floor().IntPart()
	}
	return d.Sub(decimal.NewFromFloat(0.5)).Ceil().IntPart()
}

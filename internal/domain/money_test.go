package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add_same_currency", func(t *testing.T) {
		a := NewMoney(1000, USD)
		b := NewMoney(500, USD)
		got, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), got.Amount)
	})

	t.Run("add_currency_mismatch", func(t *testing.T) {
		a := NewMoney(1000, USD)
		b := NewMoney(500, EUR)
		_, err := a.Add(b)
		require.Error(t, err)
		var mismatch CurrencyMismatchError
		require.ErrorAs(t, err, &mismatch)
	})

	t.Run("sub_insufficient_funds", func(t *testing.T) {
		a := NewMoney(100, USD)
		b := NewMoney(200, USD)
		_, err := a.Sub(b)
		require.Error(t, err)
		var insuff InsufficientFundsError
		require.ErrorAs(t, err, &insuff)
		assert.Equal(t, int64(100), insuff.Available)
		assert.Equal(t, int64(200), insuff.Requested)
	})

	t.Run("add_saturates", func(t *testing.T) {
		a := NewMoney(math.MaxInt64, USD)
		b := NewMoney(10, USD)
		got, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64), got.Amount)
	})
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		cur    Currency
		want   string
	}{
		{name: "usd_whole", amount: 10050, cur: USD, want: "$100.50"},
		{name: "zero", amount: 0, cur: EUR, want: "€0.00"},
		{name: "negative", amount: -199, cur: GBP, want: "-£1.99"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewMoney(tc.amount, tc.cur).String())
		})
	}
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want Currency
	}{
		{"usd", USD},
		{"USD", USD},
		{" eur ", EUR},
		{"gbp", GBP},
		{"inr", INR},
	}
	for _, tc := range cases {
		got, err := ParseCurrency(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseCurrency("XYZ")
	require.Error(t, err)
}

func TestAllCurrenciesStableOrder(t *testing.T) {
	assert.Equal(t, []Currency{USD, EUR, GBP, INR}, AllCurrencies())
}

func TestRateResolutionDisabledFluctuation(t *testing.T) {
	DisableFluctuation()
	defer DisableFluctuation()

	assert.True(t, USD.ToUSDRate().Equal(USD.BaseToUSDRate()))
	assert.True(t, GetRate(USD, EUR).Equal(GetBaseRate(USD, EUR)))
}

func TestConvertRoundTrip(t *testing.T) {
	DisableFluctuation()
	defer DisableFluctuation()

	x := int64(10000)
	converted := Convert(x, USD, EUR)
	back := Convert(converted, EUR, USD)
	diff := back - x
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, int64(1))
}

func TestConvertUSDToINR(t *testing.T) {
	DisableFluctuation()
	defer DisableFluctuation()

	got := Convert(10000, USD, INR)
	want := int64(831255)
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, int64(1))
}

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	assert.Equal(t, int64(500), Convert(500, USD, USD))
}

func TestFluctuationEnableDisable(t *testing.T) {
	DisableFluctuation()
	assert.False(t, FluctuationEnabled())
	EnableFluctuation()
	assert.True(t, FluctuationEnabled())
	DisableFluctuation()
	assert.False(t, FluctuationEnabled())
}

package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"

	"github.com/marketfront/cartstate/internal/domain"
)

func TestMoney_Arithmetic(t *testing.T) {
	price := domain.Money{Amount: decimal.RequireFromString("19.99"), Currency: currency.EUR}

	subtotal := price.Mul(3)
	assert.True(t, subtotal.Amount.Equal(decimal.RequireFromString("59.97")))
	assert.Equal(t, "EUR", subtotal.Currency.String())

	// Summing from the zero value adopts the first operand's currency.
	var total domain.Money
	total = total.Add(subtotal)
	total = total.Add(price)
	assert.True(t, total.Amount.Equal(decimal.RequireFromString("79.96")))
	assert.Equal(t, "EUR", total.Currency.String())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	in := domain.Money{Amount: decimal.RequireFromString("100.50"), Currency: currency.USD}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out domain.Money
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.True(t, in.Amount.Equal(out.Amount))
	assert.Equal(t, in.Currency.String(), out.Currency.String())

	var invalid domain.Money
	err = json.Unmarshal([]byte(`{"amount":"1.00","currency":"NOPE"}`), &invalid)
	require.Error(t, err)
}

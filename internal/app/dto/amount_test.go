package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentadmin/internal/domain/shared/money"
)

func TestAmount_MarshalsTwoDecimalNumber(t *testing.T) {
	out, err := json.Marshal(map[string]Amount{
		"a": NewAmount(decimal.RequireFromString("1166.665")),
		"b": AmountOf(money.Must(350000, "USD")),
		"c": {},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1166.67,"b":3500.00,"c":0.00}`, string(out))
	assert.Contains(t, string(out), `"b":3500.00`)
}

func TestAmount_UnmarshalAcceptsNumbersAndStrings(t *testing.T) {
	var in struct {
		N *Amount `json:"n"`
		S Amount  `json:"s"`
		Z *Amount `json:"z"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"n":12.5,"s":"3500.00","z":null}`), &in))
	require.NotNil(t, in.N)
	assert.Equal(t, "12.5", in.N.String())
	assert.Equal(t, "3500", in.S.String())
	assert.Nil(t, in.Z)

	var bad Amount
	assert.Error(t, json.Unmarshal([]byte(`"12,50"`), &bad))
}

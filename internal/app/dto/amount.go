package dto

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"

	"rentadmin/internal/domain/shared/money"
)

// Amount is a currency amount written as a JSON number with exactly two decimals.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d.Round(money.MinorUnits)}
}

func AmountOf(m money.Money) Amount {
	return Amount{Decimal: m.Decimal()}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(money.MinorUnits)), nil
}

// UnmarshalJSON accepts numbers and numeric strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := bytes.Trim(bytes.TrimSpace(data), `"`)
	if string(raw) == "null" {
		return nil
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return fmt.Errorf("dto: invalid amount %s: %w", data, err)
	}
	a.Decimal = d
	return nil
}

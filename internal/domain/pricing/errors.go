package pricing

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks caller mistakes: malformed or missing fields, inverted ranges.
// ErrDataIntegrity marks broken stored configuration: the caller cannot fix it by retrying.
var (
	ErrInvalidInput  = errors.New("pricing: invalid input")
	ErrDataIntegrity = errors.New("pricing: data integrity violation")
)

var (
	ErrStayTooLong         = fmt.Errorf("%w: stay exceeds the maximum number of nights", ErrInvalidInput)
	ErrOverrideOutsideStay = fmt.Errorf("%w: override date is outside the stay", ErrInvalidInput)
	ErrNegativeOverride    = fmt.Errorf("%w: override price must be non-negative", ErrInvalidInput)
	ErrNegativeSubtotal    = fmt.Errorf("%w: subtotal must be non-negative", ErrInvalidInput)
	ErrNegativeNights      = fmt.Errorf("%w: nights must be non-negative", ErrInvalidInput)

	ErrUnknownDiscountType = fmt.Errorf("%w: unknown discount type", ErrDataIntegrity)
	ErrNegativeDiscount    = fmt.Errorf("%w: discount value must be non-negative", ErrDataIntegrity)
	ErrNegativePrice       = fmt.Errorf("%w: stored price is negative", ErrDataIntegrity)
	ErrCurrencyMismatch    = fmt.Errorf("%w: seasonal rate currency differs from room currency", ErrDataIntegrity)
)

func invalidInput(err error) error {
	if err == nil || errors.Is(err, ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

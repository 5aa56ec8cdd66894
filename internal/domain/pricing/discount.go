package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"rentadmin/internal/domain/coupons"
)

var hundred = decimal.NewFromInt(100)

// DiscountCalculator turns a validated coupon into a discount amount rounded half-up to cents.
// The discount never exceeds the subtotal.
type DiscountCalculator struct{}

func (DiscountCalculator) Discount(c *coupons.Coupon, subtotal decimal.Decimal, nights int) (decimal.Decimal, error) {
	if subtotal.IsNegative() {
		return decimal.Zero, ErrNegativeSubtotal
	}
	if nights < 0 {
		return decimal.Zero, ErrNegativeNights
	}
	if c.DiscountValue.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: coupon %s", ErrNegativeDiscount, c.ID)
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case coupons.DiscountPercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(hundred)
	case coupons.DiscountFixedAmount:
		discount = decimal.Min(c.DiscountValue, subtotal)
	case coupons.DiscountFreeNights:
		if nights == 0 {
			return decimal.Zero, nil
		}
		n := decimal.NewFromInt(int64(nights))
		free := decimal.Min(c.DiscountValue, n)
		discount = subtotal.Mul(free).Div(n)
	default:
		return decimal.Zero, fmt.Errorf("%w: %q on coupon %s", ErrUnknownDiscountType, c.DiscountType, c.ID)
	}

	discount = decimal.Min(discount, subtotal).Round(2)
	return discount, nil
}

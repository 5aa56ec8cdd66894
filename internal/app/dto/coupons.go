package dto

import "rentadmin/internal/domain/pricing"

type CouponSummary struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	DiscountType  string `json:"discount_type"`
	DiscountValue Amount `json:"discount_value"`
}

// CouponValidation omits coupon and amounts when the code was rejected.
type CouponValidation struct {
	Valid          bool           `json:"valid"`
	Errors         []string       `json:"errors,omitempty"`
	Coupon         *CouponSummary `json:"coupon,omitempty"`
	DiscountAmount *Amount        `json:"discount_amount,omitempty"`
	FinalAmount    *Amount        `json:"final_amount,omitempty"`
}

func MapCouponValidation(v pricing.CouponValidation) CouponValidation {
	if !v.Valid {
		errs := v.Errors
		if errs == nil {
			errs = []string{}
		}
		return CouponValidation{Valid: false, Errors: errs}
	}
	discount := NewAmount(v.DiscountAmount)
	out := CouponValidation{Valid: true, DiscountAmount: &discount}
	if v.Coupon != nil {
		out.Coupon = &CouponSummary{
			ID:            string(v.Coupon.ID),
			Code:          v.Coupon.Code,
			Name:          v.Coupon.Name,
			DiscountType:  string(v.Coupon.DiscountType),
			DiscountValue: Amount{Decimal: v.Coupon.DiscountValue},
		}
	}
	if v.FinalAmount != nil {
		final := NewAmount(*v.FinalAmount)
		out.FinalAmount = &final
	}
	return out
}

type CouponRedemption struct {
	UsageID        string `json:"usage_id"`
	CouponID       string `json:"coupon_id"`
	Code           string `json:"code"`
	BookingID      string `json:"booking_id"`
	DiscountAmount Amount `json:"discount_amount"`
	FinalAmount    Amount `json:"final_amount"`
}

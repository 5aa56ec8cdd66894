package coupons

import (
	"time"

	"rentadmin/internal/domain/rooms"
)

type CouponRedeemedEvent struct {
	CouponID       CouponID       `json:"coupon_id"`
	TenantID       rooms.TenantID `json:"tenant_id"`
	Code           string         `json:"code"`
	CustomerEmail  string         `json:"customer_email"`
	BookingID      string         `json:"booking_id"`
	DiscountAmount string         `json:"discount_amount"`
	Currency       string         `json:"currency,omitempty"`
	At             time.Time      `json:"at"`
}

func (e CouponRedeemedEvent) EventName() string     { return "coupon.redeemed" }
func (e CouponRedeemedEvent) AggregateID() string   { return string(e.CouponID) }
func (e CouponRedeemedEvent) OccurredAt() time.Time { return e.At }
func (e CouponRedeemedEvent) Tenant() string        { return string(e.TenantID) }

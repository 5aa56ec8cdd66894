package coupons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentadmin/internal/domain/rooms"
)

var (
	ErrCouponNotFound       = errors.New("coupons: coupon not found")
	ErrCouponExhausted      = errors.New("coupons: coupon usage limit reached")
	ErrCustomerLimitReached = errors.New("coupons: customer usage limit reached")
	ErrCodeRequired         = errors.New("coupons: code is required")
)

type CouponID string

type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
	DiscountFreeNights  DiscountType = "free_nights"
)

// Known reports whether t is one of the supported discount types.
func (t DiscountType) Known() bool {
	switch t {
	case DiscountPercentage, DiscountFixedAmount, DiscountFreeNights:
		return true
	default:
		return false
	}
}

// Coupon is a tenant-scoped promotional code. Nil pointer fields mean "no restriction".
type Coupon struct {
	ID                 CouponID
	TenantID           rooms.TenantID
	Code               string
	Name               string
	DiscountType       DiscountType
	DiscountValue      decimal.Decimal
	IsActive           bool
	ValidFrom          *time.Time
	ValidUntil         *time.Time
	ApplicableRoomIDs  []rooms.RoomID
	MaxUses            *int
	CurrentUses        int
	MaxUsesPerCustomer *int
	MinBookingAmount   *decimal.Decimal
	MinNights          *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Clone returns a deep copy; stores hand out clones so callers cannot mutate stored state.
func (c *Coupon) Clone() *Coupon {
	if c == nil {
		return nil
	}
	cp := *c
	cp.ValidFrom = clonePtr(c.ValidFrom)
	cp.ValidUntil = clonePtr(c.ValidUntil)
	cp.MaxUses = clonePtr(c.MaxUses)
	cp.MaxUsesPerCustomer = clonePtr(c.MaxUsesPerCustomer)
	cp.MinBookingAmount = clonePtr(c.MinBookingAmount)
	cp.MinNights = clonePtr(c.MinNights)
	if c.ApplicableRoomIDs != nil {
		cp.ApplicableRoomIDs = append([]rooms.RoomID(nil), c.ApplicableRoomIDs...)
	}
	return &cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// RestrictsRooms is true when the coupon only applies to specific rooms.
func (c *Coupon) RestrictsRooms() bool {
	return len(c.ApplicableRoomIDs) > 0
}

// AppliesToAny reports whether at least one of ids is in the applicable set.
func (c *Coupon) AppliesToAny(ids []rooms.RoomID) bool {
	if !c.RestrictsRooms() {
		return true
	}
	allowed := make(map[rooms.RoomID]struct{}, len(c.ApplicableRoomIDs))
	for _, id := range c.ApplicableRoomIDs {
		allowed[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := allowed[id]; ok {
			return true
		}
	}
	return false
}

// NormalizeCode trims whitespace and folds case; codes are unique per tenant regardless of case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeEmail trims whitespace and lower-cases an address for usage counting.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Usage is one redemption of a coupon. Usages are append-only.
type Usage struct {
	ID            string
	CouponID      CouponID
	CustomerEmail string
	BookingID     string
	RedeemedAt    time.Time
}

// Redemption is the commit-time request to consume one use of a coupon.
type Redemption struct {
	CouponID           CouponID
	CustomerEmail      string
	BookingID          string
	MaxUses            *int
	MaxUsesPerCustomer *int
	At                 time.Time
	UsageID            string
}

type Repository interface {
	// ByCode looks up a coupon by normalized code within a tenant. Returns ErrCouponNotFound.
	ByCode(ctx context.Context, tenant rooms.TenantID, code string) (*Coupon, error)
	Save(ctx context.Context, coupon *Coupon) error
}

type UsageRepository interface {
	// CountByCustomer counts prior redemptions of a coupon by a case-insensitive email.
	CountByCustomer(ctx context.Context, id CouponID, email string) (int, error)
}

// Redeemer consumes a coupon use atomically: the usage counter is only incremented when it is
// still below MaxUses, and the usage row is appended in the same step.
type Redeemer interface {
	Redeem(ctx context.Context, r Redemption) error
}

package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"rentadmin/internal/domain/coupons"
	"rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/domain/shared/money"
)

// DefaultMaxStayNights bounds a single quote.
const DefaultMaxStayNights = 730

// Quote is the night-by-night price of a stay. It is computed fresh on every call.
type Quote struct {
	RoomID   rooms.RoomID
	TenantID rooms.TenantID
	Stay     daterange.DateRange
	Currency string
	Breakdown
}

// CouponSummary is the subset of a coupon that is safe to return to callers.
type CouponSummary struct {
	ID            coupons.CouponID
	Code          string
	Name          string
	DiscountType  coupons.DiscountType
	DiscountValue decimal.Decimal
}

// CouponValidation is the advisory outcome of checking a coupon. A valid result does not
// reserve a use: the redemption must re-validate and increment atomically.
type CouponValidation struct {
	Valid          bool
	Errors         []string
	Violations     []Violation
	Coupon         *CouponSummary
	DiscountAmount decimal.Decimal
	// FinalAmount is subtotal minus discount; nil when no subtotal was supplied.
	FinalAmount *decimal.Decimal
}

// Engine composes the resolver, aggregator, validator and discount calculator. It holds no
// mutable state; every call reads a fresh snapshot through the repositories.
type Engine struct {
	Rooms         rooms.Repository
	Rates         rooms.RateRepository
	Coupons       coupons.Repository
	Usages        coupons.UsageRepository
	Logger        *slog.Logger
	MaxStayNights int

	resolver   SeasonalRateResolver
	aggregator PricingAggregator
	calculator DiscountCalculator
}

var ErrEngineMisconfigured = errors.New("pricing: engine misconfigured")

// QuotePrice prices [start, end) with no overrides.
func (e *Engine) QuotePrice(ctx context.Context, roomID rooms.RoomID, start, end time.Time) (Quote, error) {
	return e.QuoteWithOverrides(ctx, roomID, start, end, nil)
}

// QuoteWithOverrides prices a stay and applies admin per-night overrides on top of the
// resolved prices.
func (e *Engine) QuoteWithOverrides(ctx context.Context, roomID rooms.RoomID, start, end time.Time, overrides Overrides) (Quote, error) {
	if e.Rooms == nil || e.Rates == nil {
		return Quote{}, ErrEngineMisconfigured
	}
	if roomID == "" {
		return Quote{}, invalidInput(rooms.ErrRoomIDRequired)
	}
	stay, err := daterange.NewStay(start, end)
	if err != nil {
		return Quote{}, invalidInput(err)
	}
	if stay.Nights() > e.maxStayNights() {
		return Quote{}, fmt.Errorf("%w: %d > %d", ErrStayTooLong, stay.Nights(), e.maxStayNights())
	}

	room, err := e.Rooms.ByID(ctx, roomID)
	if err != nil {
		return Quote{}, err
	}

	quote := Quote{
		RoomID:   room.ID,
		TenantID: room.TenantID,
		Stay:     stay,
		Currency: room.Currency(),
	}
	if stay.Empty() {
		if len(overrides) > 0 {
			return Quote{}, ErrOverrideOutsideStay
		}
		quote.Breakdown = Breakdown{Nights: []NightCharge{}, Total: money.Zero(room.Currency())}
		return quote, nil
	}

	rates, err := e.Rates.Overlapping(ctx, room.ID, stay)
	if err != nil {
		return Quote{}, err
	}
	nights, err := e.resolver.Resolve(room, stay, rates)
	if err != nil {
		e.logIntegrity(ctx, err, "room_id", room.ID)
		return Quote{}, err
	}
	breakdown, err := e.aggregator.Aggregate(room.Currency(), nights, overrides)
	if err != nil {
		return Quote{}, err
	}
	quote.Breakdown = breakdown
	return quote, nil
}

// ValidateCoupon checks a code for a tenant and, when eligible, computes its discount.
func (e *Engine) ValidateCoupon(ctx context.Context, tenant rooms.TenantID, code string, cc CouponContext) (CouponValidation, error) {
	if cc.Subtotal != nil && cc.Subtotal.IsNegative() {
		return CouponValidation{}, ErrNegativeSubtotal
	}
	if cc.Nights != nil && *cc.Nights < 0 {
		return CouponValidation{}, ErrNegativeNights
	}
	validator := CouponValidator{Coupons: e.Coupons, Usages: e.Usages}
	eligibility, err := validator.Validate(ctx, tenant, code, cc)
	if err != nil {
		e.logIntegrity(ctx, err, "code", code, "tenant_id", tenant)
		return CouponValidation{}, err
	}
	if !eligibility.Eligible() {
		return CouponValidation{Valid: false, Errors: eligibility.Messages(), Violations: eligibility.Violations}, nil
	}

	coupon := eligibility.Coupon
	subtotal := decimal.Zero
	if cc.Subtotal != nil {
		subtotal = *cc.Subtotal
	}
	nights := 0
	if cc.Nights != nil {
		nights = *cc.Nights
	}
	discount, err := e.calculator.Discount(coupon, subtotal, nights)
	if err != nil {
		e.logIntegrity(ctx, err, "coupon_id", coupon.ID, "tenant_id", tenant)
		return CouponValidation{}, err
	}

	result := CouponValidation{
		Valid:  true,
		Errors: []string{},
		Coupon: &CouponSummary{
			ID:            coupon.ID,
			Code:          coupon.Code,
			Name:          coupon.Name,
			DiscountType:  coupon.DiscountType,
			DiscountValue: coupon.DiscountValue,
		},
		DiscountAmount: discount,
	}
	if cc.Subtotal != nil {
		final := cc.Subtotal.Sub(discount).Round(2)
		result.FinalAmount = &final
	}
	return result, nil
}

func (e *Engine) maxStayNights() int {
	if e.MaxStayNights > 0 {
		return e.MaxStayNights
	}
	return DefaultMaxStayNights
}

func (e *Engine) logIntegrity(ctx context.Context, err error, args ...any) {
	if e.Logger == nil || !errors.Is(err, ErrDataIntegrity) {
		return
	}
	e.Logger.ErrorContext(ctx, "pricing data integrity error", append([]any{"error", err}, args...)...)
}

package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentadmin/internal/domain/coupons"
	"rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
)

// Rule names a single coupon eligibility check.
type Rule string

const (
	RuleCodeRequired       Rule = "code_required"
	RuleUnknownCode        Rule = "invalid_code"
	RuleInactive           Rule = "inactive"
	RuleNotYetValid        Rule = "not_yet_valid"
	RuleExpired            Rule = "expired"
	RuleRoomNotApplicable  Rule = "room_not_applicable"
	RuleUsageLimit         Rule = "usage_limit_reached"
	RuleCustomerUsageLimit Rule = "customer_usage_limit_reached"
	RuleMinBookingAmount   Rule = "min_booking_amount"
	RuleMinNights          Rule = "min_nights"
)

// MessageInvalidCode is deliberately the same for every unknown code.
const MessageInvalidCode = "invalid coupon code"

// Violation is one failed rule with a message suitable for display.
type Violation struct {
	Rule    Rule
	Message string
}

// CouponContext describes the booking a coupon is checked against. Nil fields skip their rule.
type CouponContext struct {
	RoomIDs       []rooms.RoomID
	CustomerEmail string
	Subtotal      *decimal.Decimal
	Nights        *int
	CheckIn       *time.Time
}

// Eligibility is the validator's outcome: Coupon is set when it was found.
type Eligibility struct {
	Coupon     *coupons.Coupon
	Violations []Violation
}

// Eligible reports a found coupon with no rule failures.
func (e Eligibility) Eligible() bool {
	return e.Coupon != nil && len(e.Violations) == 0
}

// Messages lists violation messages in rule order.
func (e Eligibility) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Message)
	}
	return out
}

// CouponValidator looks a coupon up and runs every eligibility rule, collecting all failures.
type CouponValidator struct {
	Coupons coupons.Repository
	Usages  coupons.UsageRepository
}

func (v CouponValidator) Validate(ctx context.Context, tenant rooms.TenantID, code string, cc CouponContext) (Eligibility, error) {
	normalized := coupons.NormalizeCode(code)
	if normalized == "" {
		return Eligibility{Violations: []Violation{{Rule: RuleCodeRequired, Message: "coupon code is required"}}}, nil
	}
	if v.Coupons == nil {
		return Eligibility{}, errors.New("pricing: coupon repository missing")
	}
	coupon, err := v.Coupons.ByCode(ctx, tenant, normalized)
	if err != nil {
		if errors.Is(err, coupons.ErrCouponNotFound) {
			return Eligibility{Violations: []Violation{{Rule: RuleUnknownCode, Message: MessageInvalidCode}}}, nil
		}
		return Eligibility{}, err
	}
	if coupon == nil || coupon.TenantID != tenant {
		return Eligibility{Violations: []Violation{{Rule: RuleUnknownCode, Message: MessageInvalidCode}}}, nil
	}
	if !coupon.DiscountType.Known() {
		return Eligibility{}, fmt.Errorf("%w: %q on coupon %s", ErrUnknownDiscountType, coupon.DiscountType, coupon.ID)
	}

	violations, err := v.check(ctx, coupon, cc)
	if err != nil {
		return Eligibility{}, err
	}
	return Eligibility{Coupon: coupon, Violations: violations}, nil
}

func (v CouponValidator) check(ctx context.Context, c *coupons.Coupon, cc CouponContext) ([]Violation, error) {
	var out []Violation
	add := func(rule Rule, format string, args ...any) {
		out = append(out, Violation{Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	if !c.IsActive {
		add(RuleInactive, "coupon is not active")
	}
	if cc.CheckIn != nil {
		checkIn := daterange.Day(*cc.CheckIn)
		if c.ValidFrom != nil && checkIn.Before(daterange.Day(*c.ValidFrom)) {
			add(RuleNotYetValid, "coupon is not yet valid (valid from %s)", daterange.FormatDay(*c.ValidFrom))
		}
		if c.ValidUntil != nil && checkIn.After(daterange.Day(*c.ValidUntil)) {
			add(RuleExpired, "coupon has expired (valid until %s)", daterange.FormatDay(*c.ValidUntil))
		}
	}
	if c.RestrictsRooms() && len(cc.RoomIDs) > 0 && !c.AppliesToAny(cc.RoomIDs) {
		add(RuleRoomNotApplicable, "coupon does not apply to the selected room")
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		add(RuleUsageLimit, "coupon usage limit has been reached")
	}
	if c.MaxUsesPerCustomer != nil && strings.TrimSpace(cc.CustomerEmail) != "" {
		if v.Usages == nil {
			return nil, errors.New("pricing: coupon usage repository missing")
		}
		used, err := v.Usages.CountByCustomer(ctx, c.ID, coupons.NormalizeEmail(cc.CustomerEmail))
		if err != nil {
			return nil, err
		}
		if used >= *c.MaxUsesPerCustomer {
			add(RuleCustomerUsageLimit, "coupon has already been used the maximum number of times by this customer")
		}
	}
	if c.MinBookingAmount != nil && cc.Subtotal != nil && cc.Subtotal.LessThan(*c.MinBookingAmount) {
		add(RuleMinBookingAmount, "minimum booking amount is %s", c.MinBookingAmount.StringFixed(2))
	}
	if c.MinNights != nil && cc.Nights != nil && *cc.Nights < *c.MinNights {
		add(RuleMinNights, "minimum stay is %d nights", *c.MinNights)
	}
	return out, nil
}

package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentadmin/internal/app/commands"
	"rentadmin/internal/app/dto"
	"rentadmin/internal/app/handlers/pricing"
	"rentadmin/internal/app/handlers/support"
	"rentadmin/internal/app/middleware"
	"rentadmin/internal/app/outbox"
	"rentadmin/internal/app/uow"
	domaincoupons "rentadmin/internal/domain/coupons"
	domainpricing "rentadmin/internal/domain/pricing"
	"rentadmin/internal/pkg/clock"
)

const redeemCouponKey = "coupons.redeem"

var (
	ErrUnitOfWorkRequired = errors.New("coupons: unit of work required")
	ErrBookingRequired    = errors.New("coupons: booking id is required")
	ErrEmailRequired      = errors.New("coupons: customer email is required")
	ErrSubtotalRequired   = errors.New("coupons: subtotal is required")
)

// RejectedError carries the rule violations found when a redemption is re-validated at commit time.
type RejectedError struct {
	Errors []string
}

func (e *RejectedError) Error() string {
	return "coupons: redemption rejected: " + strings.Join(e.Errors, "; ")
}

// RedeemCouponCommand consumes one use of a coupon for a committed booking.
type RedeemCouponCommand struct {
	pricing.ValidateCouponQuery
	BookingID       string
	IdempotencyKeyV string
}

func (c RedeemCouponCommand) Key() string { return redeemCouponKey }

// IdempotencyKey is scoped by tenant so two tenants cannot collide on a client-chosen key.
func (c RedeemCouponCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" {
		return ""
	}
	return redeemCouponKey + ":" + c.TenantID + ":" + c.IdempotencyKeyV
}

func (c RedeemCouponCommand) ResultPrototype() any { return &dto.CouponRedemption{} }

func (c RedeemCouponCommand) Validate() error {
	if err := c.ValidateCouponQuery.Validate(); err != nil {
		return err
	}
	switch {
	case strings.TrimSpace(c.Code) == "":
		return fmt.Errorf("%w: %w", domainpricing.ErrInvalidInput, domaincoupons.ErrCodeRequired)
	case strings.TrimSpace(c.BookingID) == "":
		return fmt.Errorf("%w: %w", domainpricing.ErrInvalidInput, ErrBookingRequired)
	case strings.TrimSpace(c.CustomerEmail) == "":
		return fmt.Errorf("%w: %w", domainpricing.ErrInvalidInput, ErrEmailRequired)
	case c.Subtotal == nil:
		return fmt.Errorf("%w: %w", domainpricing.ErrInvalidInput, ErrSubtotalRequired)
	}
	return nil
}

type RedeemCouponHandler struct {
	UoWFactory uow.UoWFactory
	Settings   support.EngineSettings
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *RedeemCouponHandler) Handle(ctx context.Context, cmd RedeemCouponCommand) (*dto.CouponRedemption, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.Bind(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	engine := support.NewEngine(unit, h.Settings)
	validation, err := engine.ValidateCoupon(ctx, cmd.Tenant(), cmd.Code, cmd.Context())
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, &RejectedError{Errors: validation.Errors}
	}

	coupon, err := unit.Coupons().ByCode(ctx, cmd.Tenant(), cmd.Code)
	if err != nil {
		return nil, err
	}
	now := clock.OrUTC(h.Clock).Now()
	usageID := uuid.NewString()
	email := domaincoupons.NormalizeEmail(cmd.CustomerEmail)
	if err := unit.Redeemer().Redeem(ctx, domaincoupons.Redemption{
		CouponID:           coupon.ID,
		CustomerEmail:      email,
		BookingID:          cmd.BookingID,
		MaxUses:            coupon.MaxUses,
		MaxUsesPerCustomer: coupon.MaxUsesPerCustomer,
		At:                 now,
		UsageID:            usageID,
	}); err != nil {
		return nil, err
	}

	final := decimal.Zero
	if validation.FinalAmount != nil {
		final = *validation.FinalAmount
	}
	event := domaincoupons.CouponRedeemedEvent{
		CouponID:       coupon.ID,
		TenantID:       coupon.TenantID,
		Code:           coupon.Code,
		CustomerEmail:  email,
		BookingID:      cmd.BookingID,
		DiscountAmount: validation.DiscountAmount.StringFixed(2),
		At:             now,
	}
	if err := outbox.Record(ctx, h.Outbox, h.encoder(), event); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &dto.CouponRedemption{
		UsageID:        usageID,
		CouponID:       string(coupon.ID),
		Code:           coupon.Code,
		BookingID:      cmd.BookingID,
		DiscountAmount: dto.NewAmount(validation.DiscountAmount),
		FinalAmount:    dto.NewAmount(final),
	}, nil
}

func (h *RedeemCouponHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RedeemCouponCommand, *dto.CouponRedemption] = (*RedeemCouponHandler)(nil)
var _ middleware.IdempotentCommand = (*RedeemCouponCommand)(nil)

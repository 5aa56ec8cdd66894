package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rentadmin/internal/app/dto"
	"rentadmin/internal/app/handlers/support"
	"rentadmin/internal/app/queries"
	"rentadmin/internal/app/uow"
	domainpricing "rentadmin/internal/domain/pricing"
	domainrooms "rentadmin/internal/domain/rooms"
)

const validateCouponKey = "coupons.validate"

type ValidateCouponQuery struct {
	TenantID      string
	Code          string
	RoomIDs       []string
	CustomerEmail string
	Subtotal      *decimal.Decimal
	Nights        *int
	CheckIn       *time.Time
}

func (q ValidateCouponQuery) Key() string { return validateCouponKey }

func (q ValidateCouponQuery) Tenant() domainrooms.TenantID { return domainrooms.TenantID(q.TenantID) }

func (q ValidateCouponQuery) Validate() error {
	if q.TenantID == "" {
		return fmt.Errorf("%w: %w", domainpricing.ErrInvalidInput, domainrooms.ErrTenantRequired)
	}
	return nil
}

// Context converts the query into the engine's coupon context.
func (q ValidateCouponQuery) Context() domainpricing.CouponContext {
	ids := make([]domainrooms.RoomID, 0, len(q.RoomIDs))
	for _, id := range q.RoomIDs {
		if id != "" {
			ids = append(ids, domainrooms.RoomID(id))
		}
	}
	return domainpricing.CouponContext{
		RoomIDs:       ids,
		CustomerEmail: q.CustomerEmail,
		Subtotal:      q.Subtotal,
		Nights:        q.Nights,
		CheckIn:       q.CheckIn,
	}
}

type ValidateCouponHandler struct {
	UoWFactory uow.UoWFactory
	Settings   support.EngineSettings
}

func (h *ValidateCouponHandler) Handle(ctx context.Context, q ValidateCouponQuery) (dto.CouponValidation, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CouponValidation{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	engine := support.NewEngine(unit, h.Settings)
	res, err := engine.ValidateCoupon(ctx, q.Tenant(), q.Code, q.Context())
	if err != nil {
		return dto.CouponValidation{}, err
	}
	return dto.MapCouponValidation(res), nil
}

var _ queries.Handler[ValidateCouponQuery, dto.CouponValidation] = (*ValidateCouponHandler)(nil)

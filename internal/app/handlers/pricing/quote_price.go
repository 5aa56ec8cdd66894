package pricing

import (
	"context"
	"fmt"
	"time"

	"rentadmin/internal/app/dto"
	"rentadmin/internal/app/handlers/support"
	"rentadmin/internal/app/queries"
	"rentadmin/internal/app/uow"
	domainpricing "rentadmin/internal/domain/pricing"
	domainrooms "rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
)

const quotePriceKey = "pricing.quote"

type QuotePriceQuery struct {
	TenantID  string
	RoomID    string
	StartDate time.Time
	EndDate   time.Time
}

func (q QuotePriceQuery) Key() string { return quotePriceKey }

func (q QuotePriceQuery) Tenant() domainrooms.TenantID { return domainrooms.TenantID(q.TenantID) }

func (q QuotePriceQuery) Validate() error {
	return validateStay(q.TenantID, q.RoomID, q.StartDate, q.EndDate)
}

type QuotePriceHandler struct {
	UoWFactory uow.UoWFactory
	Settings   support.EngineSettings
}

func (h *QuotePriceHandler) Handle(ctx context.Context, q QuotePriceQuery) (dto.PriceQuote, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	engine := newTenantEngine(unit, h.Settings, q.Tenant())
	quote, err := engine.QuotePrice(ctx, domainrooms.RoomID(q.RoomID), q.StartDate, q.EndDate)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	return dto.MapQuote(quote), nil
}

func newTenantEngine(unit uow.UnitOfWork, settings support.EngineSettings, tenant domainrooms.TenantID) *domainpricing.Engine {
	engine := support.NewEngine(unit, settings)
	engine.Rooms = tenantRooms{Repository: engine.Rooms, tenant: tenant}
	return engine
}

func validateStay(tenant, room string, start, end time.Time) error {
	switch {
	case tenant == "":
		return fmt.Errorf("%w: %w", domainpricing.ErrInvalidInput, domainrooms.ErrTenantRequired)
	case room == "":
		return fmt.Errorf("%w: %w", domainpricing.ErrInvalidInput, domainrooms.ErrRoomIDRequired)
	case start.IsZero(), end.IsZero():
		return fmt.Errorf("%w: %w", domainpricing.ErrInvalidInput, daterange.ErrMissingDate)
	}
	return nil
}

var _ queries.Handler[QuotePriceQuery, dto.PriceQuote] = (*QuotePriceHandler)(nil)

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
	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/domain/shared/money"
)

const quoteOverridesKey = "pricing.quote_overrides"

// QuoteWithOverridesQuery previews a stay with admin-entered per-night prices. Overrides are
// keyed by YYYY-MM-DD and expressed in the room's currency.
type QuoteWithOverridesQuery struct {
	TenantID  string
	RoomID    string
	StartDate time.Time
	EndDate   time.Time
	Overrides map[string]decimal.Decimal
}

func (q QuoteWithOverridesQuery) Key() string { return quoteOverridesKey }

func (q QuoteWithOverridesQuery) Tenant() domainrooms.TenantID {
	return domainrooms.TenantID(q.TenantID)
}

func (q QuoteWithOverridesQuery) Validate() error {
	if err := validateStay(q.TenantID, q.RoomID, q.StartDate, q.EndDate); err != nil {
		return err
	}
	for key := range q.Overrides {
		if _, err := daterange.ParseDay(key); err != nil {
			return fmt.Errorf("%w: override %q: %w", domainpricing.ErrInvalidInput, key, err)
		}
	}
	return nil
}

type QuoteWithOverridesHandler struct {
	UoWFactory uow.UoWFactory
	Settings   support.EngineSettings
}

func (h *QuoteWithOverridesHandler) Handle(ctx context.Context, q QuoteWithOverridesQuery) (dto.PriceQuote, error) {
	overrides := make(domainpricing.Overrides, len(q.Overrides))
	for key, amount := range q.Overrides {
		day, err := daterange.ParseDay(key)
		if err != nil {
			return dto.PriceQuote{}, fmt.Errorf("%w: %w", domainpricing.ErrInvalidInput, err)
		}
		// Currency is left empty and inherits the room's currency during aggregation.
		overrides.Set(day, money.Money{Amount: amount.Round(money.MinorUnits).Shift(money.MinorUnits).IntPart()})
	}

	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	engine := newTenantEngine(unit, h.Settings, q.Tenant())
	quote, err := engine.QuoteWithOverrides(ctx, domainrooms.RoomID(q.RoomID), q.StartDate, q.EndDate, overrides)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	return dto.MapQuote(quote), nil
}

var _ queries.Handler[QuoteWithOverridesQuery, dto.PriceQuote] = (*QuoteWithOverridesHandler)(nil)

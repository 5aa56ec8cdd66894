package pricing

import (
	"fmt"
	"time"

	"rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/domain/shared/money"
)

// NightPrice is the rule-derived price of one night.
type NightPrice struct {
	Date           time.Time
	BasePrice      money.Money
	EffectivePrice money.Money
	SeasonalRate   *rooms.SeasonalRate
}

// SeasonalRateResolver picks exactly one price source per night: the room's base price or a
// single seasonal rate, never a blend.
//
// When several rates cover a night the highest Priority wins. Equal priorities are broken by
// the narrower period, then the most recently created rate, then the greater rate ID, so the
// result never depends on the order the repository returned the rates in.
type SeasonalRateResolver struct{}

func (SeasonalRateResolver) Resolve(room *rooms.Room, stay daterange.DateRange, rates []rooms.SeasonalRate) ([]NightPrice, error) {
	if room.BasePricePerNight.IsNegative() {
		return nil, fmt.Errorf("%w: room %s", ErrNegativePrice, room.ID)
	}
	nights := stay.Nights()
	candidates := make([]rooms.SeasonalRate, 0, len(rates))
	for _, rate := range rates {
		if rate.RoomID != "" && rate.RoomID != room.ID {
			continue
		}
		if rate.PricePerNight.IsNegative() {
			return nil, fmt.Errorf("%w: seasonal rate %s", ErrNegativePrice, rate.ID)
		}
		if rate.PricePerNight.Currency != room.BasePricePerNight.Currency {
			return nil, fmt.Errorf("%w: seasonal rate %s", ErrCurrencyMismatch, rate.ID)
		}
		if !rate.AppliesToStay(nights) {
			continue
		}
		candidates = append(candidates, rate)
	}

	out := make([]NightPrice, 0, nights)
	for _, day := range stay.Days() {
		night := NightPrice{
			Date:           day,
			BasePrice:      room.BasePricePerNight,
			EffectivePrice: room.BasePricePerNight,
		}
		var chosen *rooms.SeasonalRate
		for i := range candidates {
			if !candidates[i].Period.ContainsDay(day) {
				continue
			}
			if chosen == nil || outranks(candidates[i], *chosen) {
				chosen = &candidates[i]
			}
		}
		if chosen != nil {
			rate := *chosen
			night.EffectivePrice = rate.PricePerNight
			night.SeasonalRate = &rate
		}
		out = append(out, night)
	}
	return out, nil
}

// outranks reports whether a takes precedence over b for a night both cover.
func outranks(a, b rooms.SeasonalRate) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if la, lb := a.Period.Length(), b.Period.Length(); la != lb {
		return la < lb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

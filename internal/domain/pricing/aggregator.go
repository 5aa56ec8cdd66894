package pricing

import (
	"fmt"
	"time"

	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/domain/shared/money"
)

// Overrides are admin-entered per-night prices keyed by calendar day (YYYY-MM-DD).
type Overrides map[string]money.Money

// Set records an override for the night of day.
func (o Overrides) Set(day time.Time, price money.Money) {
	o[daterange.FormatDay(day)] = price
}

// Clear drops the override for day; the night reverts to its resolved price.
func (o Overrides) Clear(day time.Time) {
	delete(o, daterange.FormatDay(day))
}

func (o Overrides) lookup(day time.Time) (money.Money, bool) {
	if o == nil {
		return money.Money{}, false
	}
	m, ok := o[daterange.FormatDay(day)]
	return m, ok
}

// NightCharge is one line of the breakdown. BasePrice, EffectivePrice and SeasonalRate show
// what the rules say; Override and Charged show what is actually billed.
type NightCharge struct {
	NightPrice
	Override *money.Money
	Charged  money.Money
}

// Breakdown is the aggregated bill for a stay.
type Breakdown struct {
	Nights      []NightCharge
	TotalNights int
	Total       money.Money
}

// PricingAggregator sums resolved nights into a total, honoring overrides. It keeps no state.
type PricingAggregator struct{}

func (PricingAggregator) Aggregate(currency string, nights []NightPrice, overrides Overrides) (Breakdown, error) {
	total := money.Zero(currency)
	seen := make(map[string]struct{}, len(nights))
	lines := make([]NightCharge, 0, len(nights))
	for _, night := range nights {
		key := daterange.FormatDay(night.Date)
		seen[key] = struct{}{}
		line := NightCharge{NightPrice: night, Charged: night.EffectivePrice}
		if override, ok := overrides.lookup(night.Date); ok {
			if override.IsNegative() {
				return Breakdown{}, fmt.Errorf("%w: %s", ErrNegativeOverride, key)
			}
			if override.Currency == "" {
				override.Currency = total.Currency
			}
			o := override
			line.Override = &o
			line.Charged = override
		}
		sum, err := total.Add(line.Charged)
		if err != nil {
			return Breakdown{}, invalidInput(fmt.Errorf("night %s: %w", key, err))
		}
		total = sum
		lines = append(lines, line)
	}
	for key := range overrides {
		if _, ok := seen[key]; !ok {
			return Breakdown{}, fmt.Errorf("%w: %s", ErrOverrideOutsideStay, key)
		}
	}
	return Breakdown{Nights: lines, TotalNights: len(lines), Total: total}, nil
}

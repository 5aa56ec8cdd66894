package dto

import (
	"rentadmin/internal/domain/pricing"
	"rentadmin/internal/domain/shared/daterange"
)

type SeasonalRateRef struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PricePerNight Amount `json:"price_per_night"`
}

type NightPrice struct {
	Date           string           `json:"date"`
	BasePrice      Amount           `json:"base_price"`
	EffectivePrice Amount           `json:"effective_price"`
	SeasonalRate   *SeasonalRateRef `json:"seasonal_rate"`
	OverridePrice  *Amount          `json:"override_price,omitempty"`
	ChargedPrice   Amount           `json:"charged_price"`
}

type PriceQuote struct {
	RoomID      string       `json:"room_id"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	Nights      []NightPrice `json:"nights"`
	TotalNights int          `json:"total_nights"`
	TotalAmount Amount       `json:"total_amount"`
	Currency    string       `json:"currency"`
}

func MapQuote(q pricing.Quote) PriceQuote {
	out := PriceQuote{
		RoomID:      string(q.RoomID),
		StartDate:   daterange.FormatDay(q.Stay.CheckIn),
		EndDate:     daterange.FormatDay(q.Stay.CheckOut),
		Nights:      make([]NightPrice, 0, len(q.Nights)),
		TotalNights: q.TotalNights,
		TotalAmount: AmountOf(q.Total),
		Currency:    q.Currency,
	}
	for _, n := range q.Nights {
		line := NightPrice{
			Date:           daterange.FormatDay(n.Date),
			BasePrice:      AmountOf(n.BasePrice),
			EffectivePrice: AmountOf(n.EffectivePrice),
			ChargedPrice:   AmountOf(n.Charged),
		}
		if n.SeasonalRate != nil {
			line.SeasonalRate = &SeasonalRateRef{
				ID:            string(n.SeasonalRate.ID),
				Name:          n.SeasonalRate.Name,
				PricePerNight: AmountOf(n.SeasonalRate.PricePerNight),
			}
		}
		if n.Override != nil {
			o := AmountOf(*n.Override)
			line.OverridePrice = &o
		}
		out.Nights = append(out.Nights, line)
	}
	return out
}

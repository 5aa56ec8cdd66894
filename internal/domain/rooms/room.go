package rooms

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/domain/shared/money"
)

var (
	ErrRoomNotFound   = errors.New("rooms: room not found")
	ErrRoomIDRequired = errors.New("rooms: room id is required")
	ErrTenantRequired = errors.New("rooms: tenant id is required")
	ErrNegativePrice  = errors.New("rooms: price per night must be non-negative")
	ErrNightsRange    = errors.New("rooms: min stay nights must be <= max stay nights")
	ErrRatePriority   = errors.New("rooms: seasonal rate priority must be non-negative")
)

type RoomID string
type TenantID string
type RateID string

// Room is the priced unit. It is read-only for the pricing engine.
type Room struct {
	ID                RoomID
	TenantID          TenantID
	Name              string
	BasePricePerNight money.Money
	MinStayNights     int
	MaxStayNights     *int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Currency is the room's pricing currency.
func (r *Room) Currency() string {
	return r.BasePricePerNight.Currency
}

// Validate checks the invariants the engine relies on.
func (r *Room) Validate() error {
	if strings.TrimSpace(string(r.ID)) == "" {
		return ErrRoomIDRequired
	}
	if strings.TrimSpace(string(r.TenantID)) == "" {
		return ErrTenantRequired
	}
	if r.BasePricePerNight.IsNegative() {
		return ErrNegativePrice
	}
	if r.BasePricePerNight.Currency == "" {
		return money.ErrInvalidCurrency
	}
	if r.MaxStayNights != nil && r.MinStayNights > *r.MaxStayNights {
		return ErrNightsRange
	}
	return nil
}

// SeasonalRate overrides the room's nightly price for an inclusive calendar period.
// Higher Priority wins when several rates cover the same night.
type SeasonalRate struct {
	ID            RateID
	RoomID        RoomID
	Name          string
	Period        daterange.Period
	PricePerNight money.Money
	Priority      int
	MinNights     *int
	CreatedAt     time.Time
}

func (s SeasonalRate) Validate() error {
	if s.PricePerNight.IsNegative() {
		return ErrNegativePrice
	}
	if s.Priority < 0 {
		return ErrRatePriority
	}
	if s.Period.End.Before(s.Period.Start) {
		return daterange.ErrInvalidRange
	}
	return nil
}

// AppliesToStay reports whether the rate's min-nights requirement is met by a stay of n nights.
func (s SeasonalRate) AppliesToStay(nights int) bool {
	return s.MinNights == nil || nights >= *s.MinNights
}

type Repository interface {
	ByID(ctx context.Context, id RoomID) (*Room, error)
	Save(ctx context.Context, room *Room) error
}

// RateRepository returns a point-in-time snapshot of a room's seasonal rates.
type RateRepository interface {
	// Overlapping returns every rate of the room whose period shares a night with the stay.
	Overlapping(ctx context.Context, id RoomID, stay daterange.DateRange) ([]SeasonalRate, error)
	Save(ctx context.Context, rate SeasonalRate) error
}

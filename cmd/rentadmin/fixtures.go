package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/domain/shared/money"
)

type fixtures struct {
	Rooms   []roomFixture   `json:"rooms"`
	Rates   []rateFixture   `json:"seasonal_rates"`
	Coupons []couponFixture `json:"coupons"`
}

type roomFixture struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	Name          string          `json:"name"`
	BasePrice     decimal.Decimal `json:"base_price_per_night"`
	Currency      string          `json:"currency"`
	MinStayNights int             `json:"min_stay_nights"`
	MaxStayNights *int            `json:"max_stay_nights"`
}

type rateFixture struct {
	ID            string          `json:"id"`
	RoomID        string          `json:"room_id"`
	Name          string          `json:"name"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Priority      int             `json:"priority"`
	MinNights     *int            `json:"min_nights"`
}

type couponFixture struct {
	ID                 string           `json:"id"`
	TenantID           string           `json:"tenant_id"`
	Code               string           `json:"code"`
	Name               string           `json:"name"`
	DiscountType       string           `json:"discount_type"`
	DiscountValue      decimal.Decimal  `json:"discount_value"`
	IsActive           bool             `json:"is_active"`
	ValidFrom          string           `json:"valid_from"`
	ValidUntil         string           `json:"valid_until"`
	ApplicableRoomIDs  []string         `json:"applicable_room_ids"`
	MaxUses            *int             `json:"max_uses"`
	MaxUsesPerCustomer *int             `json:"max_uses_per_customer"`
	MinBookingAmount   *decimal.Decimal `json:"min_booking_amount"`
	MinNights          *int             `json:"min_nights"`
}

// loadFixtures seeds rooms, seasonal rates and coupons through the configured repositories. Invalid
// entries are logged and skipped.
func (a *application) loadFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	if path == "" {
		path = defaultFixturesPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("fixtures file empty", "path", path)
		return nil
	}

	var fx fixtures
	if err := json.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now().UTC()
	currencies := make(map[string]string, len(fx.Rooms))
	for _, rf := range fx.Rooms {
		room, err := rf.toRoom(now)
		if err == nil {
			err = a.rooms.Save(ctx, room)
		}
		if err != nil {
			logger.Error("fixture room rejected", "room_id", rf.ID, "error", err)
			continue
		}
		currencies[rf.ID] = room.Currency()
	}
	for _, rf := range fx.Rates {
		currency, ok := currencies[rf.RoomID]
		if !ok {
			logger.Error("fixture rate references unknown room", "rate_id", rf.ID, "room_id", rf.RoomID)
			continue
		}
		rate, err := rf.toRate(currency, now)
		if err == nil {
			err = a.rates.Save(ctx, rate)
		}
		if err != nil {
			logger.Error("fixture rate rejected", "rate_id", rf.ID, "error", err)
		}
	}
	for _, cf := range fx.Coupons {
		coupon, err := cf.toCoupon(now)
		if err == nil {
			err = a.coupons.Save(ctx, coupon)
		}
		if err != nil {
			logger.Error("fixture coupon rejected", "coupon_id", cf.ID, "error", err)
		}
	}
	logger.Info("fixtures imported", "path", path, "rooms", len(fx.Rooms), "rates", len(fx.Rates), "coupons", len(fx.Coupons))
	return nil
}

func (f roomFixture) toRoom(now time.Time) (*domainrooms.Room, error) {
	base, err := money.FromDecimal(f.BasePrice, f.Currency)
	if err != nil {
		return nil, err
	}
	room := &domainrooms.Room{
		ID:                domainrooms.RoomID(f.ID),
		TenantID:          domainrooms.TenantID(f.TenantID),
		Name:              f.Name,
		BasePricePerNight: base,
		MinStayNights:     f.MinStayNights,
		MaxStayNights:     f.MaxStayNights,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return room, room.Validate()
}

func (f rateFixture) toRate(currency string, now time.Time) (domainrooms.SeasonalRate, error) {
	start, err := daterange.ParseDay(f.StartDate)
	if err != nil {
		return domainrooms.SeasonalRate{}, err
	}
	end, err := daterange.ParseDay(f.EndDate)
	if err != nil {
		return domainrooms.SeasonalRate{}, err
	}
	period, err := daterange.NewPeriod(start, end)
	if err != nil {
		return domainrooms.SeasonalRate{}, err
	}
	price, err := money.FromDecimal(f.PricePerNight, currency)
	if err != nil {
		return domainrooms.SeasonalRate{}, err
	}
	rate := domainrooms.SeasonalRate{
		ID:            domainrooms.RateID(f.ID),
		RoomID:        domainrooms.RoomID(f.RoomID),
		Name:          f.Name,
		Period:        period,
		PricePerNight: price,
		Priority:      f.Priority,
		MinNights:     f.MinNights,
		CreatedAt:     now,
	}
	return rate, rate.Validate()
}

func (f couponFixture) toCoupon(now time.Time) (*domaincoupons.Coupon, error) {
	validFrom, err := optionalDay(f.ValidFrom)
	if err != nil {
		return nil, err
	}
	validUntil, err := optionalDay(f.ValidUntil)
	if err != nil {
		return nil, err
	}
	c := &domaincoupons.Coupon{
		ID:                 domaincoupons.CouponID(f.ID),
		TenantID:           domainrooms.TenantID(f.TenantID),
		Code:               domaincoupons.NormalizeCode(f.Code),
		Name:               f.Name,
		DiscountType:       domaincoupons.DiscountType(f.DiscountType),
		DiscountValue:      f.DiscountValue,
		IsActive:           f.IsActive,
		ValidFrom:          validFrom,
		ValidUntil:         validUntil,
		MaxUses:            f.MaxUses,
		MaxUsesPerCustomer: f.MaxUsesPerCustomer,
		MinBookingAmount:   f.MinBookingAmount,
		MinNights:          f.MinNights,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, id := range f.ApplicableRoomIDs {
		c.ApplicableRoomIDs = append(c.ApplicableRoomIDs, domainrooms.RoomID(id))
	}
	if c.Code == "" {
		return nil, domaincoupons.ErrCodeRequired
	}
	return c, nil
}

func optionalDay(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := daterange.ParseDay(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func defaultFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "pricing.json"),
		filepath.Join("..", "..", "data", "pricing.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentadmin/internal/domain/coupons"
	"rentadmin/internal/domain/rooms"
)

func newEngine(rates []rooms.SeasonalRate, cs ...*coupons.Coupon) (*Engine, *fakeRates) {
	rr := &fakeRates{items: rates}
	repo := fakeCoupons{}
	for _, c := range cs {
		_ = repo.Save(context.Background(), c)
	}
	return &Engine{
		Rooms:   fakeRooms{"room-1": testRoom()},
		Rates:   rr,
		Coupons: repo,
		Usages:  fakeUsages{},
	}, rr
}

func TestEngine_QuotePriceScenario(t *testing.T) {
	e, _ := newEngine([]rooms.SeasonalRate{
		{ID: "peak", RoomID: "room-1", Name: "Peak", Period: period("2025-07-02", "2025-07-02"), PricePerNight: usd(1500), Priority: 1},
	})

	q, err := e.QuotePrice(context.Background(), "room-1", day("2025-07-01"), day("2025-07-04"))
	require.NoError(t, err)
	assert.Equal(t, rooms.TenantID("tenant-a"), q.TenantID)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, 3, q.TotalNights)
	var prices []string
	for _, n := range q.Nights {
		prices = append(prices, n.Charged.String())
	}
	assert.Equal(t, []string{"1000.00", "1500.00", "1000.00"}, prices)
	assert.Equal(t, "3500.00", q.Total.String())
}

func TestEngine_ZeroNightStay(t *testing.T) {
	e, rr := newEngine(nil)
	q, err := e.QuotePrice(context.Background(), "room-1", day("2025-07-01"), day("2025-07-01"))
	require.NoError(t, err)
	assert.Empty(t, q.Nights)
	assert.NotNil(t, q.Nights)
	assert.Equal(t, 0, q.TotalNights)
	assert.True(t, q.Total.IsZero())
	assert.Equal(t, 0, rr.calls)
}

func TestEngine_QuoteIgnoresRoomStayPolicy(t *testing.T) {
	room := testRoom()
	room.MinStayNights = 3
	room.MaxStayNights = intPtr(5)
	e, _ := newEngine(nil)
	e.Rooms = fakeRooms{"room-1": room}

	short, err := e.QuotePrice(context.Background(), "room-1", day("2025-07-01"), day("2025-07-02"))
	require.NoError(t, err)
	assert.Equal(t, "1000.00", short.Total.String())

	long, err := e.QuotePrice(context.Background(), "room-1", day("2025-07-01"), day("2025-07-08"))
	require.NoError(t, err)
	assert.Equal(t, 7, long.TotalNights)
}

func TestEngine_QuoteInputErrors(t *testing.T) {
	e, _ := newEngine(nil)

	_, err := e.QuotePrice(context.Background(), "room-1", day("2025-07-05"), day("2025-07-01"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.QuotePrice(context.Background(), "room-1", day("2025-01-01"), day("2030-01-01"))
	assert.ErrorIs(t, err, ErrStayTooLong)

	_, err = e.QuotePrice(context.Background(), "missing", day("2025-07-01"), day("2025-07-02"))
	assert.ErrorIs(t, err, rooms.ErrRoomNotFound)
}

func TestEngine_QuoteWithOverrides(t *testing.T) {
	e, _ := newEngine(nil)
	q, err := e.QuoteWithOverrides(context.Background(), "room-1", day("2025-07-01"), day("2025-07-03"), Overrides{"2025-07-02": usd(700)})
	require.NoError(t, err)
	assert.Equal(t, "1700.00", q.Total.String())
	assert.Equal(t, "1000.00", q.Nights[1].EffectivePrice.String())
}

func TestEngine_ValidateCoupon(t *testing.T) {
	pct := summerCoupon()
	free := &coupons.Coupon{ID: "c-free", TenantID: "tenant-a", Code: "FREENIGHT", Name: "Free night", DiscountType: coupons.DiscountFreeNights, DiscountValue: dec("1"), IsActive: true}
	broken := &coupons.Coupon{ID: "c-bad", TenantID: "tenant-a", Code: "BROKEN", DiscountType: "mystery", DiscountValue: dec("1"), IsActive: true}
	e, _ := newEngine(nil, pct, free, broken)

	t.Run("percentage scenario", func(t *testing.T) {
		res, err := e.ValidateCoupon(context.Background(), "tenant-a", "summer10", CouponContext{
			RoomIDs:  []rooms.RoomID{"room-1"},
			Subtotal: decPtr("3500"),
			Nights:   intPtr(3),
			CheckIn:  timePtr(day("2025-07-01")),
		})
		require.NoError(t, err)
		require.True(t, res.Valid)
		assert.Equal(t, "350.00", res.DiscountAmount.StringFixed(2))
		require.NotNil(t, res.FinalAmount)
		assert.Equal(t, "3150.00", res.FinalAmount.StringFixed(2))
		require.NotNil(t, res.Coupon)
		assert.Equal(t, coupons.CouponID("c-summer"), res.Coupon.ID)
		assert.Equal(t, "Summer 10%", res.Coupon.Name)
	})

	t.Run("free nights scenario", func(t *testing.T) {
		res, err := e.ValidateCoupon(context.Background(), "tenant-a", "FREENIGHT", CouponContext{
			Subtotal: decPtr("3500"),
			Nights:   intPtr(3),
		})
		require.NoError(t, err)
		require.True(t, res.Valid)
		assert.Equal(t, "1166.67", res.DiscountAmount.StringFixed(2))
		assert.Equal(t, "2333.33", res.FinalAmount.StringFixed(2))
	})

	t.Run("no subtotal yields zero discount and no final amount", func(t *testing.T) {
		res, err := e.ValidateCoupon(context.Background(), "tenant-a", "FREENIGHT", CouponContext{})
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.True(t, res.DiscountAmount.IsZero())
		assert.Nil(t, res.FinalAmount)
	})

	t.Run("unknown code", func(t *testing.T) {
		res, err := e.ValidateCoupon(context.Background(), "tenant-a", "WHATEVER", CouponContext{Subtotal: decPtr("1")})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Equal(t, []string{MessageInvalidCode}, res.Errors)
		assert.Nil(t, res.Coupon)
	})

	t.Run("expired check-in", func(t *testing.T) {
		res, err := e.ValidateCoupon(context.Background(), "tenant-a", "SUMMER10", CouponContext{CheckIn: timePtr(day("2026-01-10"))})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "expired")
	})

	t.Run("unknown discount type is fatal", func(t *testing.T) {
		_, err := e.ValidateCoupon(context.Background(), "tenant-a", "BROKEN", CouponContext{Subtotal: decPtr("100"), Nights: intPtr(1)})
		assert.ErrorIs(t, err, ErrUnknownDiscountType)
	})

	t.Run("unknown discount type is fatal on an inactive coupon", func(t *testing.T) {
		inactive := &coupons.Coupon{ID: "c-off", TenantID: "tenant-a", Code: "OFFBROKEN", DiscountType: "bogus", DiscountValue: dec("1"), IsActive: false}
		e, _ := newEngine(nil, inactive)
		res, err := e.ValidateCoupon(context.Background(), "tenant-a", "OFFBROKEN", CouponContext{})
		assert.ErrorIs(t, err, ErrDataIntegrity)
		assert.False(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("negative subtotal is input error", func(t *testing.T) {
		_, err := e.ValidateCoupon(context.Background(), "tenant-a", "SUMMER10", CouponContext{Subtotal: decPtr("-1")})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

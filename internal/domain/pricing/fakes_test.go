package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rentadmin/internal/domain/coupons"
	"rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/domain/shared/money"
)

type fakeRooms map[rooms.RoomID]*rooms.Room

func (f fakeRooms) ByID(_ context.Context, id rooms.RoomID) (*rooms.Room, error) {
	r, ok := f[id]
	if !ok {
		return nil, rooms.ErrRoomNotFound
	}
	return r, nil
}

func (f fakeRooms) Save(_ context.Context, r *rooms.Room) error {
	f[r.ID] = r
	return nil
}

type fakeRates struct {
	items []rooms.SeasonalRate
	calls int
}

func (f *fakeRates) Overlapping(_ context.Context, id rooms.RoomID, stay daterange.DateRange) ([]rooms.SeasonalRate, error) {
	f.calls++
	var out []rooms.SeasonalRate
	for _, r := range f.items {
		if r.RoomID == id && r.Period.Overlaps(stay) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRates) Save(_ context.Context, r rooms.SeasonalRate) error {
	f.items = append(f.items, r)
	return nil
}

type fakeCoupons map[string]*coupons.Coupon

func (f fakeCoupons) ByCode(_ context.Context, tenant rooms.TenantID, code string) (*coupons.Coupon, error) {
	c, ok := f[string(tenant)+"/"+coupons.NormalizeCode(code)]
	if !ok {
		return nil, coupons.ErrCouponNotFound
	}
	return c, nil
}

func (f fakeCoupons) Save(_ context.Context, c *coupons.Coupon) error {
	f[string(c.TenantID)+"/"+coupons.NormalizeCode(c.Code)] = c
	return nil
}

type fakeUsages map[string]int

func (f fakeUsages) CountByCustomer(_ context.Context, id coupons.CouponID, email string) (int, error) {
	return f[string(id)+"/"+coupons.NormalizeEmail(email)], nil
}

func day(s string) time.Time {
	t, err := daterange.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func usd(major int64) money.Money {
	return money.Must(major*100, "USD")
}

func period(from, to string) daterange.Period {
	p, err := daterange.NewPeriod(day(from), day(to))
	if err != nil {
		panic(err)
	}
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func testRoom() *rooms.Room {
	return &rooms.Room{ID: "room-1", TenantID: "tenant-a", Name: "Sea View", BasePricePerNight: usd(1000)}
}

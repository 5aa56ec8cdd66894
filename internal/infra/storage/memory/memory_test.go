package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "rentadmin/internal/app/outbox"
	"rentadmin/internal/app/uow"
	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/domain/shared/money"
)

func intPtr(v int) *int { return &v }

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := daterange.ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestRoomRepository_ReturnsCopies(t *testing.T) {
	repo := NewRoomRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &domainrooms.Room{ID: "r1", TenantID: "t1", BasePricePerNight: money.Must(10000, "USD")}))

	got, err := repo.ByID(ctx, "r1")
	require.NoError(t, err)
	got.BasePricePerNight = money.Must(1, "USD")

	again, err := repo.ByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), again.BasePricePerNight.Amount)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainrooms.ErrRoomNotFound)

	assert.Error(t, repo.Save(ctx, &domainrooms.Room{ID: "r2", TenantID: "t1", BasePricePerNight: money.Must(-1, "USD")}))
}

func TestRateRepository_Overlapping(t *testing.T) {
	repo := NewRateRepository()
	ctx := context.Background()
	period := func(a, b string) daterange.Period {
		p, err := daterange.NewPeriod(mustDay(t, a), mustDay(t, b))
		require.NoError(t, err)
		return p
	}
	require.NoError(t, repo.Save(ctx, domainrooms.SeasonalRate{ID: "b", RoomID: "r1", Period: period("2025-07-01", "2025-07-10"), PricePerNight: money.Must(1, "USD")}))
	require.NoError(t, repo.Save(ctx, domainrooms.SeasonalRate{ID: "a", RoomID: "r1", Period: period("2025-07-05", "2025-07-06"), PricePerNight: money.Must(1, "USD")}))
	require.NoError(t, repo.Save(ctx, domainrooms.SeasonalRate{ID: "c", RoomID: "r1", Period: period("2025-08-01", "2025-08-02"), PricePerNight: money.Must(1, "USD")}))
	require.NoError(t, repo.Save(ctx, domainrooms.SeasonalRate{ID: "x", RoomID: "r2", Period: period("2025-07-01", "2025-07-10"), PricePerNight: money.Must(1, "USD")}))

	stay, err := daterange.NewStay(mustDay(t, "2025-07-04"), mustDay(t, "2025-07-06"))
	require.NoError(t, err)
	rates, err := repo.Overlapping(ctx, "r1", stay)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, domainrooms.RateID("a"), rates[0].ID)
	assert.Equal(t, domainrooms.RateID("b"), rates[1].ID)

	t.Run("save replaces by id", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, domainrooms.SeasonalRate{ID: "a", RoomID: "r1", Period: period("2025-09-01", "2025-09-02"), PricePerNight: money.Must(1, "USD")}))
		rates, err := repo.Overlapping(ctx, "r1", stay)
		require.NoError(t, err)
		require.Len(t, rates, 1)
		assert.Equal(t, domainrooms.RateID("b"), rates[0].ID)
	})
}

func TestCouponStore_LookupIsTenantScopedAndCaseInsensitive(t *testing.T) {
	store := NewCouponStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domaincoupons.Coupon{ID: "c1", TenantID: "t1", Code: "summer10"}))

	c, err := store.ByCode(ctx, "t1", " SUMMER10 ")
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", c.Code)

	_, err = store.ByCode(ctx, "t2", "SUMMER10")
	assert.ErrorIs(t, err, domaincoupons.ErrCouponNotFound)
}

func TestCouponStore_CallersCannotMutateStoredCoupon(t *testing.T) {
	store := NewCouponStore()
	ctx := context.Background()
	in := &domaincoupons.Coupon{
		ID: "c1", TenantID: "t1", Code: "SUMMER10",
		ApplicableRoomIDs: []domainrooms.RoomID{"room-1"},
		MaxUses:           intPtr(5),
		MinNights:         intPtr(2),
	}
	require.NoError(t, store.Save(ctx, in))
	in.ApplicableRoomIDs[0] = "room-x"
	*in.MaxUses = 500

	got, err := store.ByCode(ctx, "t1", "SUMMER10")
	require.NoError(t, err)
	got.ApplicableRoomIDs[0] = "room-y"
	*got.MinNights = 0

	again, err := store.ByCode(ctx, "t1", "SUMMER10")
	require.NoError(t, err)
	assert.Equal(t, []domainrooms.RoomID{"room-1"}, again.ApplicableRoomIDs)
	assert.Equal(t, 5, *again.MaxUses)
	assert.Equal(t, 2, *again.MinNights)
}

func TestCouponStore_RedeemEnforcesLimits(t *testing.T) {
	store := NewCouponStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domaincoupons.Coupon{ID: "c1", TenantID: "t1", Code: "ONCE", MaxUses: intPtr(2), MaxUsesPerCustomer: intPtr(1)}))

	redeem := func(email string) error {
		return store.Redeem(ctx, domaincoupons.Redemption{
			CouponID:           "c1",
			CustomerEmail:      email,
			BookingID:          "b-" + email,
			MaxUses:            intPtr(2),
			MaxUsesPerCustomer: intPtr(1),
			UsageID:            "u-" + email,
		})
	}
	require.NoError(t, redeem("a@example.com"))
	assert.ErrorIs(t, redeem("A@Example.com"), domaincoupons.ErrCustomerLimitReached)
	require.NoError(t, redeem("b@example.com"))
	assert.ErrorIs(t, redeem("c@example.com"), domaincoupons.ErrCouponExhausted)

	c, err := store.ByCode(ctx, "t1", "ONCE")
	require.NoError(t, err)
	assert.Equal(t, 2, c.CurrentUses)
	assert.Len(t, store.Usages(), 2)

	n, err := store.CountByCustomer(ctx, "c1", " A@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCouponStore_ConcurrentRedeemNeverOverspends(t *testing.T) {
	store := NewCouponStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domaincoupons.Coupon{ID: "c1", TenantID: "t1", Code: "RUSH", MaxUses: intPtr(10)}))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		exhausted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Redeem(ctx, domaincoupons.Redemption{
				CouponID:      "c1",
				CustomerEmail: fmt.Sprintf("guest%d@example.com", i),
				MaxUses:       intPtr(10),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domaincoupons.ErrCouponExhausted):
				exhausted++
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, ok)
	assert.Equal(t, 40, exhausted)
}

func TestFactory_Begin(t *testing.T) {
	f := NewFactory(NewRoomRepository(), NewRateRepository(), NewCouponStore())
	unit, err := f.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	assert.NotNil(t, unit.Redeemer())

	_, err = Factory{}.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	assert.ErrorIs(t, err, ErrFactoryMisconfigured)
}

func TestOutbox_FlushPublishes(t *testing.T) {
	box := NewOutbox(nil)
	ctx := context.Background()
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "1", Name: "coupon.redeemed"}))
	assert.Empty(t, box.Published())
	require.NoError(t, box.Flush(ctx))
	require.Len(t, box.Published(), 1)
	require.NoError(t, box.Flush(ctx))
	assert.Len(t, box.Published(), 1)
}

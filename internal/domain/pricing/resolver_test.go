package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/domain/shared/money"
)

func stay(from, to string) daterange.DateRange {
	dr, err := daterange.NewStay(day(from), day(to))
	if err != nil {
		panic(err)
	}
	return dr
}

func TestResolve_NoRatesUsesBasePrice(t *testing.T) {
	nights, err := SeasonalRateResolver{}.Resolve(testRoom(), stay("2025-07-01", "2025-07-06"), nil)
	require.NoError(t, err)
	require.Len(t, nights, 5)
	for _, n := range nights {
		assert.Equal(t, usd(1000), n.EffectivePrice)
		assert.Equal(t, usd(1000), n.BasePrice)
		assert.Nil(t, n.SeasonalRate)
	}
}

func TestResolve_SingleRateReplacesBase(t *testing.T) {
	rates := []rooms.SeasonalRate{
		{ID: "summer", RoomID: "room-1", Period: period("2025-07-02", "2025-07-02"), PricePerNight: usd(1500), Priority: 1},
	}
	nights, err := SeasonalRateResolver{}.Resolve(testRoom(), stay("2025-07-01", "2025-07-04"), rates)
	require.NoError(t, err)

	got := []money.Money{nights[0].EffectivePrice, nights[1].EffectivePrice, nights[2].EffectivePrice}
	assert.Equal(t, []money.Money{usd(1000), usd(1500), usd(1000)}, got)
	require.NotNil(t, nights[1].SeasonalRate)
	assert.Equal(t, rooms.RateID("summer"), nights[1].SeasonalRate.ID)
	assert.Equal(t, usd(1000), nights[1].BasePrice)
}

func TestResolve_HigherPriorityWins(t *testing.T) {
	rates := []rooms.SeasonalRate{
		{ID: "high", RoomID: "room-1", Period: period("2025-07-01", "2025-07-31"), PricePerNight: usd(2000), Priority: 10},
		{ID: "low", RoomID: "room-1", Period: period("2025-07-01", "2025-07-31"), PricePerNight: usd(1200), Priority: 5},
	}
	for _, order := range [][]rooms.SeasonalRate{rates, {rates[1], rates[0]}} {
		nights, err := SeasonalRateResolver{}.Resolve(testRoom(), stay("2025-07-10", "2025-07-11"), order)
		require.NoError(t, err)
		assert.Equal(t, rooms.RateID("high"), nights[0].SeasonalRate.ID)
		assert.Equal(t, usd(2000), nights[0].EffectivePrice)
	}
}

func TestResolve_TieBreakIsDeterministic(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("narrower period wins", func(t *testing.T) {
		rates := []rooms.SeasonalRate{
			{ID: "month", RoomID: "room-1", Period: period("2025-07-01", "2025-07-31"), PricePerNight: usd(1200), Priority: 3},
			{ID: "weekend", RoomID: "room-1", Period: period("2025-07-12", "2025-07-13"), PricePerNight: usd(1800), Priority: 3},
		}
		nights, err := SeasonalRateResolver{}.Resolve(testRoom(), stay("2025-07-12", "2025-07-13"), rates)
		require.NoError(t, err)
		assert.Equal(t, rooms.RateID("weekend"), nights[0].SeasonalRate.ID)
	})

	t.Run("newer rate wins on equal width", func(t *testing.T) {
		rates := []rooms.SeasonalRate{
			{ID: "b", RoomID: "room-1", Period: period("2025-07-01", "2025-07-10"), PricePerNight: usd(1300), Priority: 3, CreatedAt: created.Add(time.Hour)},
			{ID: "a", RoomID: "room-1", Period: period("2025-07-05", "2025-07-14"), PricePerNight: usd(1100), Priority: 3, CreatedAt: created},
		}
		nights, err := SeasonalRateResolver{}.Resolve(testRoom(), stay("2025-07-06", "2025-07-07"), rates)
		require.NoError(t, err)
		assert.Equal(t, rooms.RateID("b"), nights[0].SeasonalRate.ID)
	})

	t.Run("id breaks full ties regardless of order", func(t *testing.T) {
		a := rooms.SeasonalRate{ID: "a", RoomID: "room-1", Period: period("2025-07-01", "2025-07-10"), PricePerNight: usd(1300), Priority: 3, CreatedAt: created}
		b := a
		b.ID = "b"
		b.PricePerNight = usd(1400)
		for _, order := range [][]rooms.SeasonalRate{{a, b}, {b, a}} {
			nights, err := SeasonalRateResolver{}.Resolve(testRoom(), stay("2025-07-02", "2025-07-03"), order)
			require.NoError(t, err)
			assert.Equal(t, rooms.RateID("b"), nights[0].SeasonalRate.ID)
		}
	})
}

func TestResolve_MinNightsGate(t *testing.T) {
	rates := []rooms.SeasonalRate{
		{ID: "long-stay", RoomID: "room-1", Period: period("2025-07-01", "2025-07-31"), PricePerNight: usd(800), Priority: 1, MinNights: intPtr(7)},
	}
	short, err := SeasonalRateResolver{}.Resolve(testRoom(), stay("2025-07-01", "2025-07-04"), rates)
	require.NoError(t, err)
	assert.Nil(t, short[0].SeasonalRate)

	long, err := SeasonalRateResolver{}.Resolve(testRoom(), stay("2025-07-01", "2025-07-08"), rates)
	require.NoError(t, err)
	assert.Equal(t, usd(800), long[0].EffectivePrice)
}

func TestResolve_IntegrityErrors(t *testing.T) {
	t.Run("negative rate", func(t *testing.T) {
		rates := []rooms.SeasonalRate{{ID: "bad", RoomID: "room-1", Period: period("2025-07-01", "2025-07-02"), PricePerNight: money.Must(-1, "USD")}}
		_, err := SeasonalRateResolver{}.Resolve(testRoom(), stay("2025-07-01", "2025-07-02"), rates)
		assert.ErrorIs(t, err, ErrNegativePrice)
		assert.ErrorIs(t, err, ErrDataIntegrity)
	})

	t.Run("negative base", func(t *testing.T) {
		room := testRoom()
		room.BasePricePerNight = money.Must(-100, "USD")
		_, err := SeasonalRateResolver{}.Resolve(room, stay("2025-07-01", "2025-07-02"), nil)
		assert.ErrorIs(t, err, ErrDataIntegrity)
	})

	t.Run("currency mismatch", func(t *testing.T) {
		rates := []rooms.SeasonalRate{{ID: "eur", RoomID: "room-1", Period: period("2025-07-01", "2025-07-02"), PricePerNight: money.Must(100, "EUR")}}
		_, err := SeasonalRateResolver{}.Resolve(testRoom(), stay("2025-07-01", "2025-07-02"), rates)
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
	})
}

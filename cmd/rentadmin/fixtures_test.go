package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincoupons "rentadmin/internal/domain/coupons"
	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/infra/storage/memory"
)

func TestLoadFixtures_SeedsRepositories(t *testing.T) {
	rooms := memory.NewRoomRepository()
	rates := memory.NewRateRepository()
	coupons := memory.NewCouponStore()
	app := &application{rooms: rooms, rates: rates, coupons: coupons}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	path := filepath.Join("..", "..", "data", "pricing.json")
	require.NoError(t, app.loadFixtures(context.Background(), path, logger))

	room, err := rooms.ByID(context.Background(), "room-101")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", room.BasePricePerNight.String())
	assert.Equal(t, "USD", room.Currency())

	in, _ := daterange.ParseDay("2025-07-01")
	out, _ := daterange.ParseDay("2025-07-04")
	stay, err := daterange.NewStay(in, out)
	require.NoError(t, err)
	overlapping, err := rates.Overlapping(context.Background(), "room-101", stay)
	require.NoError(t, err)
	assert.Len(t, overlapping, 2)

	c, err := coupons.ByCode(context.Background(), "seaside", "summer10")
	require.NoError(t, err)
	assert.Equal(t, domaincoupons.DiscountPercentage, c.DiscountType)
	require.NotNil(t, c.ValidUntil)
	assert.Equal(t, "2025-08-31", daterange.FormatDay(*c.ValidUntil))
	require.NotNil(t, c.MinBookingAmount)
	assert.Equal(t, "500", c.MinBookingAmount.String())
}

func TestLoadFixtures_SkipsBadEntriesAndMissingFile(t *testing.T) {
	rooms := memory.NewRoomRepository()
	app := &application{rooms: rooms, rates: memory.NewRateRepository(), coupons: memory.NewCouponStore()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, app.loadFixtures(context.Background(), filepath.Join(t.TempDir(), "missing.json"), logger))

	path := filepath.Join(t.TempDir(), "fx.json")
	body := `{
		"rooms": [
			{"id": "ok", "tenant_id": "t", "base_price_per_night": "10", "currency": "USD"},
			{"id": "neg", "tenant_id": "t", "base_price_per_night": "-1", "currency": "USD"}
		],
		"seasonal_rates": [{"id": "orphan", "room_id": "ghost", "start_date": "2025-01-01", "end_date": "2025-01-02", "price_per_night": "5"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	require.NoError(t, app.loadFixtures(context.Background(), path, logger))

	_, err := rooms.ByID(context.Background(), "ok")
	assert.NoError(t, err)
	_, err = rooms.ByID(context.Background(), "neg")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	assert.Error(t, app.loadFixtures(context.Background(), path, logger))
}

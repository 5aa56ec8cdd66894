package postgres

import (
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
)

type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return fmt.Errorf("scan: %d columns, %d destinations", len(r), len(dest))
	}
	for i, v := range r {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

func TestScanCoupon(t *testing.T) {
	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	until := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	row := fakeRow{
		"c-summer", "tenant-a", "SUMMER10", "Summer 10%", "percentage", "10.00", true,
		sql.NullTime{}, sql.NullTime{Time: until, Valid: true}, pq.StringArray{"room-1", "room-2"},
		sql.NullInt64{Int64: 100, Valid: true}, 3,
		sql.NullInt64{}, sql.NullString{String: "500.00", Valid: true}, sql.NullInt64{Int64: 2, Valid: true},
		created, created,
	}

	c, err := scanCoupon(row)
	require.NoError(t, err)
	assert.Equal(t, domaincoupons.CouponID("c-summer"), c.ID)
	assert.Equal(t, domaincoupons.DiscountPercentage, c.DiscountType)
	assert.Equal(t, "10", c.DiscountValue.String())
	assert.Nil(t, c.ValidFrom)
	require.NotNil(t, c.ValidUntil)
	assert.True(t, until.Equal(*c.ValidUntil))
	assert.Equal(t, []domainrooms.RoomID{"room-1", "room-2"}, c.ApplicableRoomIDs)
	require.NotNil(t, c.MaxUses)
	assert.Equal(t, 100, *c.MaxUses)
	assert.Equal(t, 3, c.CurrentUses)
	assert.Nil(t, c.MaxUsesPerCustomer)
	require.NotNil(t, c.MinBookingAmount)
	assert.Equal(t, "500", c.MinBookingAmount.String())
	assert.Equal(t, time.UTC, c.CreatedAt.Location())
}

func TestScanCoupon_BadNumeric(t *testing.T) {
	row := fakeRow{
		"c-bad", "tenant-a", "BAD", "", "percentage", "ten", true,
		sql.NullTime{}, sql.NullTime{}, pq.StringArray{},
		sql.NullInt64{}, 0, sql.NullInt64{}, sql.NullString{}, sql.NullInt64{},
		time.Time{}, time.Time{},
	}
	_, err := scanCoupon(row)
	assert.Error(t, err)
}

package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
)

func TestCouponDocument_KeepsDecimalPrecision(t *testing.T) {
	until := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	maxUses := 100
	minAmount := decimal.RequireFromString("499.99")
	in := &domaincoupons.Coupon{
		ID:                "c-1",
		TenantID:          "tenant-a",
		Code:              " summer10 ",
		DiscountType:      domaincoupons.DiscountPercentage,
		DiscountValue:     decimal.RequireFromString("12.5"),
		IsActive:          true,
		ValidUntil:        &until,
		ApplicableRoomIDs: []domainrooms.RoomID{"room-1"},
		MaxUses:           &maxUses,
		CurrentUses:       7,
		MinBookingAmount:  &minAmount,
		CreatedAt:         time.UnixMilli(1_700_000_000_000).UTC(),
		UpdatedAt:         time.UnixMilli(1_700_000_000_000).UTC(),
	}

	doc, err := newCouponDocument(in)
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", doc.Code)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var back couponDocument
	require.NoError(t, bson.Unmarshal(raw, &back))

	out, err := back.toCoupon()
	require.NoError(t, err)
	assert.True(t, in.DiscountValue.Equal(out.DiscountValue))
	require.NotNil(t, out.MinBookingAmount)
	assert.True(t, minAmount.Equal(*out.MinBookingAmount))
	require.NotNil(t, out.ValidUntil)
	assert.True(t, until.Equal(*out.ValidUntil))
	assert.Nil(t, out.ValidFrom)
	assert.Nil(t, out.MaxUsesPerCustomer)
	assert.Equal(t, 7, out.CurrentUses)
	assert.Equal(t, in.ApplicableRoomIDs, out.ApplicableRoomIDs)
}
